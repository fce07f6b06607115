package textnorm

import (
	"testing"
	"unicode"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases", "Facturar 2 Licencias", "facturar 2 licencias"},
		{"trims", "   hola   ", "hola"},
		{"strips punctuation", "facturar: 2 mesas, 3 sillas!", "facturar 2 mesas 3 sillas"},
		{"keeps accents", "¿Cuántas facturas emitió el señor Muñoz?", "cuántas facturas emitió el señor muñoz"},
		{"keeps digits", "RFC XAXX010101000", "rfc xaxx010101000"},
		{"only symbols", "@#$%&*", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Facturar 2 licencias a RFC XAXX010101000",
		"¡Hola! ¿Me ayudas?",
		"   ya   normalizado   ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeOutputAlphabet(t *testing.T) {
	out := Normalize("Señor Müller!!! facturó 42 ítems; ¿ok?")
	for _, r := range out {
		if unicode.IsUpper(r) {
			t.Errorf("unexpected uppercase rune %q in %q", r, out)
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			t.Errorf("unexpected rune %q in %q", r, out)
		}
	}
}
