package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the ledger record of a committed checkout.
type Order struct {
	ID          string
	Customer    string
	Lines       []ReceiptLine
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
	CreatedAt   time.Time
}
