package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// CanonicalLabel returns the key form of a product label: Unicode NFKC
// normalized, trimmed and lowercased. Inner whitespace is preserved.
func CanonicalLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	return lower.String(norm.NFKC.String(label))
}

// FirstNonEmpty returns the first argument that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
