// Package rfc validates Mexican federal taxpayer identifiers.
package rfc

import (
	"regexp"
	"strings"
)

// pattern covers both the 12-character legal-entity form and the 13-character
// individual form: 3-4 letters (& and Ñ allowed), 6 digits, 3 alphanumerics.
var pattern = regexp.MustCompile(`^[A-Z&Ñ]{3,4}[0-9]{6}[A-Z0-9]{3}$`)

// Normalize upper-cases and trims a candidate RFC.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Valid reports whether s matches the RFC grammar. Empty input is invalid.
// Input is normalized to upper case before matching.
func Valid(s string) bool {
	s = Normalize(s)
	if s == "" {
		return false
	}
	return pattern.MatchString(s)
}
