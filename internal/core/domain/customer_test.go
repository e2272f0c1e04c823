package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanAfford(t *testing.T) {
	c := NewCustomer("Ahmed", decimal.NewFromInt(100))

	if !c.CanAfford(decimal.NewFromInt(100)) {
		t.Error("expected exact balance to be affordable")
	}
	if !c.CanAfford(decimal.NewFromInt(50)) {
		t.Error("expected amount below balance to be affordable")
	}
	if c.CanAfford(decimal.RequireFromString("100.01")) {
		t.Error("expected amount above balance to be unaffordable")
	}
}

func TestPay_Success(t *testing.T) {
	c := NewCustomer("Ahmed", decimal.NewFromInt(100))

	if err := c.Pay(decimal.NewFromInt(30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Balance().Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected balance 70, got %s", c.Balance())
	}
}

func TestPay_InsufficientBalance(t *testing.T) {
	c := NewCustomer("Ahmed", decimal.NewFromInt(10))

	err := c.Pay(decimal.NewFromInt(50))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got: %v", err)
	}

	// Verify balance unchanged
	if !c.Balance().Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected balance 10, got %s", c.Balance())
	}
}
