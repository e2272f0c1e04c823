package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Customer holds a display name and a cash balance.
type Customer struct {
	name    string
	balance decimal.Decimal
}

func NewCustomer(name string, balance decimal.Decimal) *Customer {
	return &Customer{name: name, balance: balance}
}

func (c *Customer) Name() string {
	return c.name
}

func (c *Customer) Balance() decimal.Decimal {
	return c.balance
}

func (c *Customer) CanAfford(amount decimal.Decimal) bool {
	return c.balance.GreaterThanOrEqual(amount)
}

// Pay debits the balance. It re-validates affordability and fails with
// ErrInsufficientBalance rather than letting the balance go negative, so
// the check and the debit cannot diverge.
func (c *Customer) Pay(amount decimal.Decimal) error {
	if c.balance.LessThan(amount) {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, c.name)
	}
	c.balance = c.balance.Sub(amount)
	return nil
}
