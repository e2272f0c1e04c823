package port

import (
	"context"

	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
)

type DatabaseRepository interface {
	// SaveOrder persists a committed order with its line items in one transaction
	SaveOrder(ctx context.Context, order domain.Order) error

	// RecentOrders returns the most recently created orders, newest first
	RecentOrders(ctx context.Context, limit int) ([]domain.Order, error)
}
