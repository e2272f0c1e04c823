package domain

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Expiry and weight are optional: a product
// without an expiry never expires, and a product without a weight is not
// physically shipped.
//
// Name, price, expiry, and weight are immutable after construction. The
// quantity on hand is read while carts are built and written when a
// checkout commits, so it carries its own lock.
type Product struct {
	name   string
	price  decimal.Decimal
	expiry *time.Time
	weight *decimal.Decimal

	mu       sync.Mutex
	quantity int
}

type ProductOption func(*Product)

// WithExpiry marks the product as perishable with the given expiry instant.
func WithExpiry(at time.Time) ProductOption {
	return func(p *Product) {
		p.expiry = &at
	}
}

// WithWeight marks the product as physically shippable with the given
// weight in kilograms.
func WithWeight(weight decimal.Decimal) ProductOption {
	return func(p *Product) {
		p.weight = &weight
	}
}

func NewProduct(name string, price decimal.Decimal, quantity int, opts ...ProductOption) *Product {
	p := &Product{
		name:     name,
		price:    price,
		quantity: quantity,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Product) Name() string {
	return p.name
}

func (p *Product) Price() decimal.Decimal {
	return p.price
}

// Quantity reports the current quantity on hand.
func (p *Product) Quantity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quantity
}

// IsAvailable reports whether the requested quantity can be served from
// the current stock.
func (p *Product) IsAvailable(quantity int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return quantity >= 0 && quantity <= p.quantity
}

// Expired reports whether the product has passed its expiry instant at
// the given time. Products without an expiry never expire.
func (p *Product) Expired(at time.Time) bool {
	if p.expiry == nil {
		return false
	}
	return at.After(*p.expiry)
}

// Shippable reports whether the product has a physical weight and thus
// needs shipment.
func (p *Product) Shippable() bool {
	return p.weight != nil
}

// Weight returns the product weight in kilograms, or zero for products
// that are not shippable.
func (p *Product) Weight() decimal.Decimal {
	if p.weight == nil {
		return decimal.Zero
	}
	return *p.weight
}

// Expiry returns the expiry instant and whether one is set.
func (p *Product) Expiry() (time.Time, bool) {
	if p.expiry == nil {
		return time.Time{}, false
	}
	return *p.expiry, true
}

// ReduceQuantity decrements the quantity on hand. It fails with
// ErrInsufficientStock if the reduction exceeds the current stock, leaving
// the stock unchanged.
func (p *Product) ReduceQuantity(quantity int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if quantity > p.quantity {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, p.name)
	}
	p.quantity -= quantity
	return nil
}
