package textutil

import "strings"

var segmentReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeSegment makes value safe to embed in a single path element.
// Separators and colons become dashes, other unsafe characters are dropped,
// and leading dots are trimmed so the result never names a parent directory.
func SanitizeSegment(value string) string {
	value = strings.TrimSpace(segmentReplacer.Replace(strings.TrimSpace(value)))
	return strings.TrimLeft(value, ".")
}
