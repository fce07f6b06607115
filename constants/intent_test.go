package constants

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		input string
		want  Intent
		ok    bool
	}{
		{"facturar", IntentInvoice, true},
		{"  Facturar.  ", IntentInvoice, true},
		{"\"consultar\"", IntentQuery, true},
		{"factura", IntentInvoice, true},
		{"query", IntentQuery, true},
		{"ayuda", IntentHelp, true},
		{"estado", IntentStatus, true},
		{"otro", IntentOther, true},
		{"no tengo idea", IntentOther, false},
		{"", IntentOther, false},
	}
	for _, tc := range cases {
		got, ok := Canonicalize(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Canonicalize(%q) = %s,%v want %s,%v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAsStringSlice(t *testing.T) {
	got := AsStringSlice()
	if len(got) != 5 {
		t.Fatalf("labels = %v", got)
	}
	if got[0] != "facturar" || got[len(got)-1] != "otro" {
		t.Errorf("labels = %v", got)
	}
}
