package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem pairs a product with a requested quantity. The product
// reference is shared with the catalog; the line total reflects the live
// product price at the time of query.
type LineItem struct {
	product  *Product
	quantity int
}

func (li LineItem) Product() *Product {
	return li.product
}

func (li LineItem) Quantity() int {
	return li.quantity
}

func (li LineItem) Total() decimal.Decimal {
	return li.product.Price().Mul(decimal.NewFromInt(int64(li.quantity)))
}

// Cart is an ordered collection of line items. Insertion order is
// preserved for receipt ordering.
type Cart struct {
	items []LineItem
}

func NewCart() *Cart {
	return &Cart{}
}

// Add appends a line item for the product. It fails with ErrOutOfStock if
// the requested quantity exceeds the product's current stock and with
// ErrInvalidQuantity if it is below one; on failure the cart is unchanged.
// Adding the same product twice yields two line items.
func (c *Cart) Add(product *Product, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if !product.IsAvailable(quantity) {
		return fmt.Errorf("%w: %s", ErrOutOfStock, product.Name())
	}
	c.items = append(c.items, LineItem{product: product, quantity: quantity})
	return nil
}

func (c *Cart) Items() []LineItem {
	return c.items
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Subtotal sums quantity times live price over all line items.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.Total())
	}
	return subtotal
}

// ShippableUnits expands every shippable line item into one unit per
// requested quantity, in cart order.
func (c *Cart) ShippableUnits() []ShippableUnit {
	var units []ShippableUnit
	for _, item := range c.items {
		if !item.product.Shippable() {
			continue
		}
		for i := 0; i < item.quantity; i++ {
			units = append(units, ShippableUnit{
				Name:   item.product.Name(),
				Weight: item.product.Weight(),
			})
		}
	}
	return units
}
