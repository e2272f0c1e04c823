package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
	"github.com/AhmedEsam99/checkout-service/internal/obs"
	"github.com/AhmedEsam99/checkout-service/internal/port"
)

var ErrDuplicateRequest = errors.New("duplicate request")

// FlatShippingFee is charged once per checkout containing at least one
// shippable unit, independent of weight and unit count.
var FlatShippingFee = decimal.NewFromInt(30)

// CheckoutService runs the validate-then-commit checkout sequence and
// hands results to the shipping and receipt collaborators. Committed
// orders are queued for asynchronous persistence.
type CheckoutService struct {
	cache      port.CacheRepository
	shipping   port.ShippingGateway
	receipts   port.ReceiptSink
	orderQueue chan domain.Order

	// mu serializes validate-then-commit against the shared catalog and
	// customer balances.
	mu  sync.Mutex
	now func() time.Time

	// queueMu guards the queue against sends racing Close.
	queueMu sync.Mutex
	closed  bool
}

// NewCheckoutService wires the collaborators. cache may be nil when no
// stock mirror or request deduplication is wanted.
func NewCheckoutService(cache port.CacheRepository, shipping port.ShippingGateway, receipts port.ReceiptSink, queueSize int) *CheckoutService {
	return &CheckoutService{
		cache:      cache,
		shipping:   shipping,
		receipts:   receipts,
		orderQueue: make(chan domain.Order, queueSize),
		now:        time.Now,
	}
}

// Checkout prices the cart, debits the customer, decrements stock, and
// reports to the collaborators. Every check runs before any mutation;
// past the commit point the checkout cannot fail, so collaborator and
// mirror errors are logged rather than returned.
func (s *CheckoutService) Checkout(ctx context.Context, requestID string, customer *domain.Customer, cart *domain.Cart) (domain.Receipt, error) {
	if s.cache != nil {
		ok, err := s.cache.SetIdempotency(ctx, "checkout:"+requestID)
		if err != nil {
			return domain.Receipt{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return domain.Receipt{}, ErrDuplicateRequest
		}
	}

	receipt, order, err := s.commit(ctx, customer, cart)
	if err != nil {
		return domain.Receipt{}, err
	}

	s.enqueueOrder(order)

	return receipt, nil
}

// commit runs the validate-then-commit sequence under the service lock.
func (s *CheckoutService) commit(ctx context.Context, customer *domain.Customer, cart *domain.Cart) (domain.Receipt, domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart.IsEmpty() {
		return domain.Receipt{}, domain.Order{}, domain.ErrEmptyCart
	}

	now := s.now()
	for _, item := range cart.Items() {
		if item.Product().Expired(now) {
			return domain.Receipt{}, domain.Order{}, fmt.Errorf("%w: %s", domain.ErrProductExpired, item.Product().Name())
		}
	}

	subtotal := cart.Subtotal()
	units := cart.ShippableUnits()
	shippingFee := decimal.Zero
	if len(units) > 0 {
		shippingFee = FlatShippingFee
	}
	total := subtotal.Add(shippingFee)

	if !customer.CanAfford(total) {
		return domain.Receipt{}, domain.Order{}, fmt.Errorf("%w: %s", domain.ErrInsufficientBalance, customer.Name())
	}

	// Commit point: all checks passed, nothing below unwinds.
	for _, item := range cart.Items() {
		if err := item.Product().ReduceQuantity(item.Quantity()); err != nil {
			return domain.Receipt{}, domain.Order{}, err
		}
	}
	if err := customer.Pay(total); err != nil {
		return domain.Receipt{}, domain.Order{}, err
	}

	s.mirrorStock(ctx, cart)

	if len(units) > 0 {
		if err := s.shipping.Ship(units); err != nil {
			obs.Logger.Warn("shipping notice failed", "error", err)
		}
	}

	receipt := domain.Receipt{
		Subtotal:         subtotal,
		ShippingFee:      shippingFee,
		Total:            total,
		RemainingBalance: customer.Balance(),
	}
	for _, item := range cart.Items() {
		receipt.Lines = append(receipt.Lines, domain.ReceiptLine{
			Quantity: item.Quantity(),
			Name:     item.Product().Name(),
			Total:    item.Total(),
		})
	}

	if err := s.receipts.Emit(receipt); err != nil {
		obs.Logger.Warn("receipt emit failed", "error", err)
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		Customer:    customer.Name(),
		Lines:       receipt.Lines,
		Subtotal:    subtotal,
		ShippingFee: shippingFee,
		Total:       total,
		CreatedAt:   now,
	}

	return receipt, order, nil
}

// enqueueOrder hands the committed order to the persistence workers. It
// runs outside the service lock; a full queue drops the ledger entry
// rather than stalling checkouts, and a send after Close is a no-op.
func (s *CheckoutService) enqueueOrder(order domain.Order) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	if s.closed {
		obs.Logger.Warn("checkout after close, ledger entry dropped", "order", order.ID)
		return
	}
	select {
	case s.orderQueue <- order:
	default:
		obs.Logger.Warn("order queue full, ledger entry dropped", "order", order.ID)
	}
}

// mirrorStock pushes the committed decrements to the external stock
// mirror. The in-process catalog is the source of truth, so mirror
// failures only get logged.
func (s *CheckoutService) mirrorStock(ctx context.Context, cart *domain.Cart) {
	if s.cache == nil {
		return
	}
	for _, item := range cart.Items() {
		ok, err := s.cache.DecrementStock(ctx, item.Product().Name(), item.Quantity())
		if err != nil {
			obs.Logger.Warn("stock mirror update failed", "product", item.Product().Name(), "error", err)
			continue
		}
		if !ok {
			obs.Logger.Warn("stock mirror out of sync", "product", item.Product().Name())
		}
	}
}

func (s *CheckoutService) GetOrderQueue() <-chan domain.Order {
	return s.orderQueue
}

func (s *CheckoutService) Close() {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.orderQueue)
}
