package domain

import "errors"

var (
	// ErrOutOfStock is returned by Cart.Add when the requested quantity
	// exceeds the product's current stock.
	ErrOutOfStock = errors.New("quantity not available")

	// ErrInvalidQuantity is returned by Cart.Add when the requested
	// quantity is below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrEmptyCart is returned when checkout is attempted on a cart with
	// no line items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrProductExpired is returned when a line item's product has passed
	// its expiry instant.
	ErrProductExpired = errors.New("product expired")

	// ErrInsufficientBalance is returned when the customer's balance does
	// not cover the checkout total.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientStock is returned by Product.ReduceQuantity when the
	// reduction exceeds the quantity on hand. Callers that validate
	// availability first never hit it.
	ErrInsufficientStock = errors.New("insufficient stock")
)
