package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
)

// Mock CacheRepository
type mockCacheRepo struct {
	stock          map[string]int
	idempotencySet map[string]bool
	mu             sync.Mutex
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		stock:          make(map[string]int),
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) SetStock(ctx context.Context, name string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[name] = quantity
	return nil
}

func (m *mockCacheRepo) DecrementStock(ctx context.Context, name string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stock[name] >= quantity {
		m.stock[name] -= quantity
		return true, nil
	}
	return false, nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

// Capturing collaborators
type captureShipping struct {
	mu    sync.Mutex
	calls [][]domain.ShippableUnit
}

func (c *captureShipping) Ship(units []domain.ShippableUnit) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, units)
	return nil
}

type captureReceipts struct {
	mu       sync.Mutex
	receipts []domain.Receipt
}

func (c *captureReceipts) Emit(receipt domain.Receipt) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipts = append(c.receipts, receipt)
	return nil
}

func newService(cache *mockCacheRepo) (*CheckoutService, *captureShipping, *captureReceipts) {
	shipping := &captureShipping{}
	receipts := &captureReceipts{}
	var svc *CheckoutService
	if cache == nil {
		svc = NewCheckoutService(nil, shipping, receipts, 100)
	} else {
		svc = NewCheckoutService(cache, shipping, receipts, 100)
	}
	return svc, shipping, receipts
}

func drain(svc *CheckoutService) {
	go func() {
		for range svc.GetOrderQueue() {
		}
	}()
}

func TestCheckout_Success(t *testing.T) {
	svc, shipping, receipts := newService(nil)
	defer svc.Close()
	drain(svc)

	product := domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 1)
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(100))
	cart := domain.NewCart()
	if err := cart.Add(product, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	receipt, err := svc.Checkout(context.Background(), "req-1", customer, cart)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if !receipt.ShippingFee.IsZero() {
		t.Errorf("expected shipping fee 0, got %s", receipt.ShippingFee)
	}
	if !receipt.Total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected total 50, got %s", receipt.Total)
	}
	if !receipt.RemainingBalance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected remaining balance 50, got %s", receipt.RemainingBalance)
	}
	if !customer.Balance().Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected balance 50, got %s", customer.Balance())
	}
	if product.Quantity() != 0 {
		t.Errorf("expected quantity 0, got %d", product.Quantity())
	}
	if len(shipping.calls) != 0 {
		t.Error("expected no shipping call for non-shippable cart")
	}
	if len(receipts.receipts) != 1 {
		t.Fatalf("expected 1 receipt emitted, got %d", len(receipts.receipts))
	}
}

func TestCheckout_ShippableCartFlatFee(t *testing.T) {
	svc, shipping, _ := newService(nil)
	defer svc.Close()
	drain(svc)

	tv := domain.NewProduct("TV", decimal.NewFromInt(300), 1,
		domain.WithWeight(decimal.NewFromInt(5)))
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(400))
	cart := domain.NewCart()
	cart.Add(tv, 1)

	receipt, err := svc.Checkout(context.Background(), "req-1", customer, cart)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if !receipt.ShippingFee.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected shipping fee 30, got %s", receipt.ShippingFee)
	}
	if !receipt.Total.Equal(decimal.NewFromInt(330)) {
		t.Errorf("expected total 330, got %s", receipt.Total)
	}
	if !customer.Balance().Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected balance 70, got %s", customer.Balance())
	}

	if len(shipping.calls) != 1 {
		t.Fatalf("expected 1 shipping call, got %d", len(shipping.calls))
	}
	units := shipping.calls[0]
	if len(units) != 1 || units[0].Name != "TV" {
		t.Fatalf("expected shipping call with one TV unit, got %v", units)
	}
	manifest := domain.BuildManifest(units)
	if manifest.Packages[0].Grams() != 5000 {
		t.Errorf("expected 5000g, got %d", manifest.Packages[0].Grams())
	}
	if !manifest.TotalWeight.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected total weight 5kg, got %s", manifest.TotalWeight)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, receipts := newService(nil)
	defer svc.Close()

	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(100))

	_, err := svc.Checkout(context.Background(), "req-1", customer, domain.NewCart())
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got: %v", err)
	}
	if len(receipts.receipts) != 0 {
		t.Error("expected no receipt on failure")
	}
}

func TestCheckout_ExpiredProduct(t *testing.T) {
	svc, _, _ := newService(nil)
	defer svc.Close()

	expired := domain.NewProduct("Milk", decimal.NewFromInt(20), 8,
		domain.WithExpiry(time.Now().Add(-24*time.Hour)))
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(100))
	cart := domain.NewCart()
	cart.Add(expired, 1)

	_, err := svc.Checkout(context.Background(), "req-1", customer, cart)
	if !errors.Is(err, domain.ErrProductExpired) {
		t.Fatalf("expected ErrProductExpired, got: %v", err)
	}

	// Verify no mutation happened
	if !customer.Balance().Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100, got %s", customer.Balance())
	}
	if expired.Quantity() != 8 {
		t.Errorf("expected quantity 8, got %d", expired.Quantity())
	}
}

func TestCheckout_InsufficientBalance(t *testing.T) {
	svc, shipping, receipts := newService(nil)
	defer svc.Close()

	product := domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 10)
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(10))
	cart := domain.NewCart()
	cart.Add(product, 1)

	_, err := svc.Checkout(context.Background(), "req-1", customer, cart)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got: %v", err)
	}

	// Verify no mutation happened
	if !customer.Balance().Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected balance 10, got %s", customer.Balance())
	}
	if product.Quantity() != 10 {
		t.Errorf("expected quantity 10, got %d", product.Quantity())
	}
	if len(shipping.calls) != 0 || len(receipts.receipts) != 0 {
		t.Error("expected no collaborator calls on failure")
	}
}

func TestCheckout_DuplicateRequest(t *testing.T) {
	cache := newMockCacheRepo()
	cache.SetStock(context.Background(), "Scratch Card", 10)

	svc, _, _ := newService(cache)
	defer svc.Close()
	drain(svc)

	product := domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 10)
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(1000))

	cart := domain.NewCart()
	cart.Add(product, 1)
	if _, err := svc.Checkout(context.Background(), "req-1", customer, cart); err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}

	// Duplicate request with same requestID
	cart = domain.NewCart()
	cart.Add(product, 1)
	_, err := svc.Checkout(context.Background(), "req-1", customer, cart)
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got: %v", err)
	}

	// Balance and stock debited only once
	if !customer.Balance().Equal(decimal.NewFromInt(950)) {
		t.Errorf("expected balance 950, got %s", customer.Balance())
	}
	if product.Quantity() != 9 {
		t.Errorf("expected quantity 9, got %d", product.Quantity())
	}
}

func TestCheckout_MirrorsStock(t *testing.T) {
	cache := newMockCacheRepo()
	cache.SetStock(context.Background(), "Scratch Card", 10)

	svc, _, _ := newService(cache)
	defer svc.Close()
	drain(svc)

	product := domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 10)
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(1000))
	cart := domain.NewCart()
	cart.Add(product, 3)

	if _, err := svc.Checkout(context.Background(), "req-1", customer, cart); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if cache.stock["Scratch Card"] != 7 {
		t.Errorf("expected mirrored stock 7, got %d", cache.stock["Scratch Card"])
	}
}

func TestCheckout_OrderQueued(t *testing.T) {
	svc, _, _ := newService(nil)

	product := domain.NewProduct("TV", decimal.NewFromInt(300), 3,
		domain.WithWeight(decimal.NewFromInt(5)))
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(1000))
	cart := domain.NewCart()
	cart.Add(product, 2)

	if _, err := svc.Checkout(context.Background(), "req-1", customer, cart); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// Read from queue
	order := <-svc.GetOrderQueue()

	if order.ID == "" {
		t.Error("expected non-empty order ID")
	}
	if order.Customer != "Ahmed" {
		t.Errorf("expected customer Ahmed, got %s", order.Customer)
	}
	if len(order.Lines) != 1 || order.Lines[0].Quantity != 2 {
		t.Fatalf("expected one line with quantity 2, got %+v", order.Lines)
	}
	if !order.Total.Equal(decimal.NewFromInt(630)) {
		t.Errorf("expected total 630, got %s", order.Total)
	}

	svc.Close()
}

func TestCheckout_ConcurrentWithCartBuilding(t *testing.T) {
	svc, _, _ := newService(nil)
	defer svc.Close()
	drain(svc)

	// Cart building reads stock while a committing checkout writes it;
	// run with -race. Stock is high enough that both sides succeed.
	product := domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 100)
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(1000))

	checkoutCart := domain.NewCart()
	if err := checkoutCart.Add(product, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := svc.Checkout(context.Background(), "req-1", customer, checkoutCart); err != nil {
			t.Errorf("checkout failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		cart := domain.NewCart()
		if err := cart.Add(product, 1); err != nil {
			t.Errorf("add failed: %v", err)
		}
	}()
	wg.Wait()

	if product.Quantity() != 99 {
		t.Errorf("expected quantity 99, got %d", product.Quantity())
	}
}

func TestCheckout_FullQueueDoesNotBlock(t *testing.T) {
	shipping := &captureShipping{}
	receipts := &captureReceipts{}
	svc := NewCheckoutService(nil, shipping, receipts, 1)
	defer svc.Close()

	product := domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 10)
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(1000))

	// Nobody drains the queue: the first order fills it, the second is
	// dropped from the ledger but the checkout itself must still return.
	for i := 0; i < 2; i++ {
		cart := domain.NewCart()
		cart.Add(product, 1)

		done := make(chan error, 1)
		go func() {
			_, err := svc.Checkout(context.Background(), "req", customer, cart)
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("checkout %d failed: %v", i, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("checkout blocked on full order queue")
		}
	}

	if product.Quantity() != 8 {
		t.Errorf("expected quantity 8, got %d", product.Quantity())
	}
}

func TestCheckout_AfterClose(t *testing.T) {
	svc, _, receipts := newService(nil)
	svc.Close()
	svc.Close() // double close must be safe

	product := domain.NewProduct("Scratch Card", decimal.NewFromInt(50), 10)
	customer := domain.NewCustomer("Ahmed", decimal.NewFromInt(1000))
	cart := domain.NewCart()
	cart.Add(product, 1)

	// The checkout still commits; only the ledger entry is dropped.
	receipt, err := svc.Checkout(context.Background(), "req-1", customer, cart)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if !receipt.Total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected total 50, got %s", receipt.Total)
	}
	if len(receipts.receipts) != 1 {
		t.Errorf("expected 1 receipt emitted, got %d", len(receipts.receipts))
	}
}

func TestCheckout_ConcurrentSharedProduct(t *testing.T) {
	svc, _, _ := newService(nil)
	defer svc.Close()
	drain(svc)

	// One unit on hand, two carts built before either checkout runs. The
	// mutex serializes the commits, so exactly one succeeds and the loser
	// surfaces the defensive stock error.
	product := domain.NewProduct("TV", decimal.NewFromInt(300), 1,
		domain.WithWeight(decimal.NewFromInt(5)))
	first := domain.NewCustomer("Ahmed", decimal.NewFromInt(1000))
	second := domain.NewCustomer("Sara", decimal.NewFromInt(1000))

	cartA := domain.NewCart()
	cartA.Add(product, 1)
	cartB := domain.NewCart()
	cartB.Add(product, 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = svc.Checkout(context.Background(), "req-a", first, cartA)
	}()
	go func() {
		defer wg.Done()
		_, results[1] = svc.Checkout(context.Background(), "req-b", second, cartB)
	}()
	wg.Wait()

	var successes, stockErrs int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrInsufficientStock):
			stockErrs++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || stockErrs != 1 {
		t.Errorf("expected 1 success and 1 stock error, got %d and %d", successes, stockErrs)
	}
	if product.Quantity() != 0 {
		t.Errorf("expected quantity 0, got %d", product.Quantity())
	}
}
