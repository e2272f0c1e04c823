// checkout-demo runs one checkout end to end with console collaborators:
// a small catalog, one customer, a mixed cart, shipment notice and
// receipt on stdout.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AhmedEsam99/checkout-service/internal/adapter/console"
	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
	"github.com/AhmedEsam99/checkout-service/internal/core/service"
)

func main() {
	tomorrow := time.Now().Add(24 * time.Hour)

	cheese := domain.NewProduct("Cheese", decimal.NewFromInt(100), 5,
		domain.WithExpiry(tomorrow), domain.WithWeight(decimal.RequireFromString("0.2")))
	biscuits := domain.NewProduct("Biscuits", decimal.NewFromInt(150), 2,
		domain.WithExpiry(tomorrow), domain.WithWeight(decimal.RequireFromString("0.7")))
	scratchCard := domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 10)

	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(1000))

	cart := domain.NewCart()
	mustAdd(cart, cheese, 2)
	mustAdd(cart, biscuits, 1)
	mustAdd(cart, scratchCard, 1)

	svc := service.NewCheckoutService(
		nil,
		console.NewShippingNotice(os.Stdout),
		console.NewReceiptPrinter(os.Stdout),
		16,
	)
	defer svc.Close()

	// No persistence here, discard the ledger queue
	go func() {
		for range svc.GetOrderQueue() {
		}
	}()

	if _, err := svc.Checkout(context.Background(), "demo", customer, cart); err != nil {
		log.Fatalf("checkout failed: %v", err)
	}
}

func mustAdd(cart *domain.Cart, product *domain.Product, quantity int) {
	if err := cart.Add(product, quantity); err != nil {
		log.Fatalf("add %s: %v", product.Name(), err)
	}
}
