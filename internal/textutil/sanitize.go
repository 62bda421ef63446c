package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeSegment composes value to NFC and replaces every rune that is not a
// letter, number, hyphen, or underscore with an underscore. The result may be
// empty.
func SanitizeSegment(value string) string {
	value = norm.NFC.String(value)
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if IsSegmentRune(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// SanitizeSegmentOr sanitizes value, falling back to the sanitized fallback and
// finally to "_" so the result is always a usable directory or file name.
func SanitizeSegmentOr(value, fallback string) string {
	if out := SanitizeSegment(value); out != "" {
		return out
	}
	if out := SanitizeSegment(fallback); out != "" {
		return out
	}
	return "_"
}

// IsSegmentRune reports whether r may appear unchanged in a path segment.
func IsSegmentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_'
}
