package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a plant label into the form used for matching: NFKC,
// case-folded, quotes dropped, every other non-alphanumeric rune turned
// into a space, whitespace collapsed.
func Normalize(label string) string {
	s := cases.Fold().String(norm.NFKC.String(label))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case isQuote(r):
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func isQuote(r rune) bool {
	switch r {
	case '\'', '"', '`', '‘', '’', '“', '”':
		return true
	}
	return false
}

// containsWords reports whether phrase appears in s on word boundaries.
// Both arguments must already be normalized.
func containsWords(s, phrase string) bool {
	return strings.Contains(" "+s+" ", " "+phrase+" ")
}
