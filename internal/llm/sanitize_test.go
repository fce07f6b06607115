package llm

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"rfc":"X"}`, `{"rfc":"X"}`, true},
		{"code fence", "```json\n{\"rfc\":\"X\"}\n```", `{"rfc":"X"}`, true},
		{"leading prose", "Claro, aquí está el JSON: {\"rfc\":\"X\"} espero te sirva", `{"rfc":"X"}`, true},
		{"no object", "no puedo ayudarte con eso", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tc.in)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && string(got) != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSanitizeInvoiceJSON(t *testing.T) {
	in := []byte(`{
		"rfc": "  xaxx010101000 ",
		"products": [
			{"name": "Licencia Software", "qty": 2.0},
			{"nombre": "", "cantidad": 1},
			{"nombre": "mesa", "cantidad": 0},
			{"nombre": "silla", "cantidad": 3, "precio": 99}
		],
		"comentario": "extra"
	}`)

	out, dropped, err := SanitizeInvoiceJSON(in, nil)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(dropped) == 0 {
		t.Error("expected dropped entries")
	}

	var fields InvoiceFields
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields.RFC != "XAXX010101000" {
		t.Errorf("rfc = %q", fields.RFC)
	}
	want := []ProductField{
		{Name: "Licencia Software", Quantity: 2},
		{Name: "silla", Quantity: 3},
	}
	if !reflect.DeepEqual(fields.Products, want) {
		t.Errorf("products = %+v, want %+v", fields.Products, want)
	}

	if err := ValidateAgainstSchema(BuildInvoiceJSONSchema(), out); err != nil {
		t.Errorf("sanitized doc should validate: %v", err)
	}
}

func TestSanitizeInvoiceJSONNotAnObject(t *testing.T) {
	if _, _, err := SanitizeInvoiceJSON([]byte(`[1,2,3]`), nil); err == nil {
		t.Error("expected decode error for non-object")
	}
}

func TestValidateAgainstSchema(t *testing.T) {
	schema := BuildInvoiceJSONSchema()

	valid := []byte(`{"rfc":"XAXX010101000","productos":[{"nombre":"mesa","cantidad":2}]}`)
	if err := ValidateAgainstSchema(schema, valid); err != nil {
		t.Errorf("valid doc rejected: %v", err)
	}

	invalid := [][]byte{
		[]byte(`{"productos":[{"nombre":"","cantidad":2}]}`),
		[]byte(`{"productos":[{"nombre":"mesa","cantidad":0}]}`),
		[]byte(`{"productos":[{"nombre":"mesa"}]}`),
		[]byte(`{"rfc":"X"}`),
		[]byte(`not json`),
	}
	for _, doc := range invalid {
		if err := ValidateAgainstSchema(schema, doc); err == nil {
			t.Errorf("invalid doc accepted: %s", doc)
		}
	}
}
