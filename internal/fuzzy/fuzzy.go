// Package fuzzy scores label similarity and picks the closest candidate above
// a cutoff. Scores are the bigram overlap coefficient, so a short brand name
// matches its longer catalogue spelling while a single shared letter scores
// nothing. Equal overlaps are separated by Sorensen-Dice, which prefers the
// candidate closest in length to the query.
package fuzzy

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Cutoffs used by the resolution flow.
const (
	SuggestionCutoff = 0.6
	RemoteCutoff     = 0.4
)

// Match is a candidate with its similarity to the query.
type Match struct {
	Value string
	Score float64
}

var (
	overlap = &metrics.OverlapCoefficient{NgramSize: 2}
	dice    = &metrics.SorensenDice{NgramSize: 2}
)

// Score returns the similarity of a and b in [0, 1]. Comparison ignores case.
func Score(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, overlap)
}

func tiebreak(a, b string) float64 {
	return strutil.Similarity(strings.ToLower(a), strings.ToLower(b), dice)
}

// Closest returns the candidate with the highest score at or above cutoff.
// Equal scores prefer the closer length, then the earliest candidate.
func Closest(query string, candidates []string, cutoff float64) (Match, bool) {
	idx, score, ok := closest(query, candidates, cutoff)
	if !ok {
		return Match{}, false
	}
	return Match{Value: candidates[idx], Score: score}, true
}

// ClosestIndex is Closest for callers that need the position of the winner.
func ClosestIndex(query string, candidates []string, cutoff float64) (int, bool) {
	idx, _, ok := closest(query, candidates, cutoff)
	return idx, ok
}

func closest(query string, candidates []string, cutoff float64) (int, float64, bool) {
	idx := -1
	bestScore, bestTie := -1.0, -1.0
	for i, candidate := range candidates {
		score := Score(query, candidate)
		if score < cutoff || score < bestScore {
			continue
		}
		tie := tiebreak(query, candidate)
		if score > bestScore || tie > bestTie {
			idx, bestScore, bestTie = i, score, tie
		}
	}
	return idx, bestScore, idx >= 0
}
