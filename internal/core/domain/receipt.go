package domain

import "github.com/shopspring/decimal"

// ReceiptLine is one cart line on the receipt.
type ReceiptLine struct {
	Quantity int
	Name     string
	Total    decimal.Decimal
}

// Receipt is the structured result of a committed checkout, handed to the
// receipt collaborator. Rendering is the collaborator's concern.
type Receipt struct {
	Lines            []ReceiptLine
	Subtotal         decimal.Decimal
	ShippingFee      decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
}
