package parser

import (
	"reflect"
	"testing"

	"facturabot/internal/entity"
)

func TestExtractInvoiceSingleItem(t *testing.T) {
	p := New(nil)

	cases := []struct {
		name string
		in   string
		want entity.InvoiceRequest
	}{
		{
			"canonical",
			"facturar 2 licencias a RFC XAXX010101000",
			entity.InvoiceRequest{
				RFC:       "XAXX010101000",
				LineItems: []entity.LineItem{{ProductName: "licencias", Quantity: 2}},
			},
		},
		{
			"without preposition",
			"facturar 3 sillas RFC ABC123456XYZ",
			entity.InvoiceRequest{
				RFC:       "ABC123456XYZ",
				LineItems: []entity.LineItem{{ProductName: "sillas", Quantity: 3}},
			},
		},
		{
			"quiero facturar",
			"hola, quiero facturar 5 mesas al RFC ABC123456XYZ por favor",
			entity.InvoiceRequest{
				RFC:       "ABC123456XYZ",
				LineItems: []entity.LineItem{{ProductName: "mesas", Quantity: 5}},
			},
		},
		{
			"necesito factura",
			"necesito una factura de 4 monitores para el RFC ABC123456XYZ",
			entity.InvoiceRequest{
				RFC:       "ABC123456XYZ",
				LineItems: []entity.LineItem{{ProductName: "monitores", Quantity: 4}},
			},
		},
		{
			"generar factura",
			"generar factura de 1 laptop para RFC XAXX010101000",
			entity.InvoiceRequest{
				RFC:       "XAXX010101000",
				LineItems: []entity.LineItem{{ProductName: "laptop", Quantity: 1}},
			},
		},
		{
			"emitir factura",
			"emitir factura: 7 teclados RFC ABC123456XYZ",
			entity.InvoiceRequest{
				RFC:       "ABC123456XYZ",
				LineItems: []entity.LineItem{{ProductName: "teclados", Quantity: 7}},
			},
		},
		{
			"uppercase input",
			"FACTURAR 2 LICENCIAS A RFC XAXX010101000",
			entity.InvoiceRequest{
				RFC:       "XAXX010101000",
				LineItems: []entity.LineItem{{ProductName: "LICENCIAS", Quantity: 2}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.ExtractInvoice(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ExtractInvoice(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractInvoiceMultiItem(t *testing.T) {
	p := New(nil)

	got := p.ExtractInvoice("facturar 2 mesas y 3 sillas a RFC ABC123456XYZ")
	want := entity.InvoiceRequest{
		RFC: "ABC123456XYZ",
		LineItems: []entity.LineItem{
			{ProductName: "mesas", Quantity: 2},
			{ProductName: "sillas", Quantity: 3},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtractInvoiceMultiItemCommas(t *testing.T) {
	p := New(nil)

	got := p.ExtractInvoice("facturar 2 mesas, 3 sillas y 1 escritorio a RFC XAXX010101000")
	want := entity.InvoiceRequest{
		RFC: "XAXX010101000",
		LineItems: []entity.LineItem{
			{ProductName: "mesas", Quantity: 2},
			{ProductName: "sillas", Quantity: 3},
			{ProductName: "escritorio", Quantity: 1},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtractInvoiceEnumerationClause(t *testing.T) {
	p := New(nil)

	// The free-form scan has nothing before the clause; the secondary pass
	// inside "productos:" picks up the items.
	got := p.ExtractInvoice("factura para RFC ABC123456XYZ, productos: 2 mesas, 3 sillas")
	if got.RFC != "ABC123456XYZ" {
		t.Errorf("rfc = %q", got.RFC)
	}
	want := []entity.LineItem{
		{ProductName: "mesas", Quantity: 2},
		{ProductName: "sillas", Quantity: 3},
	}
	if !reflect.DeepEqual(got.LineItems, want) {
		t.Errorf("items = %+v, want %+v", got.LineItems, want)
	}
}

func TestExtractInvoiceNoMatch(t *testing.T) {
	p := New(nil)

	for _, in := range []string{
		"hola, buenos días",
		"",
		"facturar cero productos",
		"quiero dos mesas", // quantities as words are unsupported
	} {
		got := p.ExtractInvoice(in)
		if got.RFC != "" || len(got.LineItems) != 0 {
			t.Errorf("ExtractInvoice(%q) = %+v, want empty", in, got)
		}
	}
}

// The cascade order is a contract: the canonical pattern must win over the
// looser no-preposition one when both could match.
func TestExtractInvoicePatternPriority(t *testing.T) {
	p := New(nil)

	got := p.ExtractInvoice("facturar 2 licencias a RFC XAXX010101000")
	if len(got.LineItems) != 1 || got.LineItems[0].ProductName != "licencias" {
		t.Fatalf("looser pattern captured the preposition: %+v", got.LineItems)
	}
}

func TestExtractQuery(t *testing.T) {
	p := New(nil)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"consultar", "consultar facturas de RFC XAXX010101000", "XAXX010101000"},
		{"ver", "ver facturas del RFC ABC123456XYZ", "ABC123456XYZ"},
		{"mostrar", "mostrar facturas RFC ABC123456XYZ", "ABC123456XYZ"},
		{"emitidas", "facturas emitidas a RFC ABC123456XYZ", "ABC123456XYZ"},
		{"indicator fallback", "consulta del rfc xaxx010101000 por favor", "XAXX010101000"},
		{"no indicators", "hola, buenos días", ""},
		{"indicator without rfc", "consultar mis facturas", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.ExtractQuery(tc.in)
			if got.RFC != tc.want {
				t.Errorf("ExtractQuery(%q).RFC = %q, want %q", tc.in, got.RFC, tc.want)
			}
		})
	}
}
