package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// ImageStem converts a label into the stem used for learned image files:
// canonical lowercase with spaces turned into underscores and path separators
// removed. Returns "unknown" for empty input.
func ImageStem(label string) string {
	stem := CanonicalLabel(label)
	stem = strings.ReplaceAll(stem, " ", "_")
	stem = fileNameReplacer.Replace(stem)
	stem = strings.Trim(stem, "._")
	if stem == "" {
		return "unknown"
	}
	return stem
}
