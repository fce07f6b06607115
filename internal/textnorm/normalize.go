// Package textnorm normalizes free-form message text before classification
// and extraction.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalize lowercases, trims, and strips every rune that is not a letter
// (accented Spanish vowels, ñ and ü included), a digit, or whitespace.
// It never fails and is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
