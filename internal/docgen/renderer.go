package docgen

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"facturabot/internal/entity"
)

// Document is the invoice content handed to a Renderer.
type Document struct {
	Folio    string
	Customer entity.Customer
	Items    []entity.PricedLineItem
	Total    decimal.Decimal
	IssuedAt string
}

// Renderer writes an invoice document in some output format.
type Renderer interface {
	Render(w io.Writer, doc *Document) error
	Ext() string
}

// TextRenderer renders an invoice as plain text.
type TextRenderer struct{}

func (r *TextRenderer) Ext() string { return ".txt" }

func (r *TextRenderer) Render(w io.Writer, doc *Document) error {
	lines := []string{
		"FACTURA " + doc.Folio,
		"Fecha: " + doc.IssuedAt,
		"RFC: " + doc.Customer.RFC,
		"",
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	for _, it := range doc.Items {
		note := ""
		if it.Assumed {
			note = " (precio estimado)"
		}
		line := fmt.Sprintf("%d x %s @ $%s = $%s%s",
			it.Quantity, it.ProductName, it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2), note)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nTOTAL: $%s\n", doc.Total.StringFixed(2))
	return err
}
