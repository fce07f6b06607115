package rfc

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"individual 13 chars", "XAXX010101000", true},
		{"legal entity 12 chars", "ABC123456XYZ", true},
		{"lowercase input accepted", "xaxx010101000", true},
		{"surrounding whitespace", "  XAXX010101000  ", true},
		{"ampersand in name part", "A&B123456XYZ", true},
		{"enye in name part", "AÑB123456XYZ", true},
		{"empty", "", false},
		{"too short", "AB1234", false},
		{"too few letters", "AB123456XYZ", false},
		{"five letters", "ABCDE123456XYZ", false},
		{"letters in date part", "XAXX01A101000", false},
		{"trailing garbage", "XAXX010101000X", false},
		{"digit in name part", "X1XX010101000", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Valid(tc.in); got != tc.want {
				t.Errorf("Valid(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  xaxx010101000 "); got != "XAXX010101000" {
		t.Errorf("Normalize = %q", got)
	}
}
