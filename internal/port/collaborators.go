package port

import "github.com/AhmedEsam99/checkout-service/internal/core/domain"

// ShippingGateway receives the shippable units of a committed checkout.
type ShippingGateway interface {
	Ship(units []domain.ShippableUnit) error
}

// ReceiptSink receives the structured receipt of a committed checkout.
type ReceiptSink interface {
	Emit(receipt domain.Receipt) error
}
