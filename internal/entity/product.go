package entity

import "github.com/shopspring/decimal"

// Product is a catalog entry. The catalog store owns it; the resolver only reads it.
type Product struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
