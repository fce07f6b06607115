package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a (product name, quantity) pair awaiting price resolution.
// Quantity is always >= 1 and ProductName is non-empty once extracted.
type LineItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// InvoiceRequest is the extractor's output for invoice intent. RFC may be empty
// when no tax id was found; LineItems may be empty when no pattern matched.
type InvoiceRequest struct {
	RFC       string     `json:"rfc,omitempty"`
	LineItems []LineItem `json:"line_items"`
}

// QueryRequest is the extractor's output for query intent.
type QueryRequest struct {
	RFC string `json:"rfc,omitempty"`
}

// PricedLineItem is a line item after catalog resolution.
// Assumed marks items whose price fell through to the default instead of a
// catalog match, so callers can tell the user the price was assumed.
type PricedLineItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Assumed     bool            `json:"assumed,omitempty"`
}

// Customer is a billing customer keyed by RFC.
type Customer struct {
	ID        int64     `json:"id"`
	RFC       string    `json:"rfc"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Invoice is one persisted invoice row (one row per line item, as the original
// schema models it).
type Invoice struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Total        decimal.Decimal `json:"total"`
	IssuedAt     time.Time       `json:"issued_at"`
	DocumentPath string          `json:"document_path,omitempty"`
}
