package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
	"github.com/AhmedEsam99/checkout-service/internal/core/service"
	"github.com/AhmedEsam99/checkout-service/internal/port"
)

type HTTPHandler struct {
	checkout  *service.CheckoutService
	catalog   *domain.Catalog
	customers map[string]*domain.Customer
	db        port.DatabaseRepository
}

func NewHTTPHandler(checkout *service.CheckoutService, catalog *domain.Catalog, customers map[string]*domain.Customer, db port.DatabaseRepository) *HTTPHandler {
	return &HTTPHandler{
		checkout:  checkout,
		catalog:   catalog,
		customers: customers,
		db:        db,
	}
}

type CheckoutItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type CheckoutHTTPRequest struct {
	RequestID  string                `json:"request_id"`
	CustomerID string                `json:"customer_id"`
	Items      []CheckoutItemRequest `json:"items"`
}

type ReceiptLineJSON struct {
	Quantity int             `json:"quantity"`
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
}

type ReceiptJSON struct {
	Lines            []ReceiptLineJSON `json:"lines"`
	Subtotal         decimal.Decimal   `json:"subtotal"`
	ShippingFee      decimal.Decimal   `json:"shipping_fee"`
	Total            decimal.Decimal   `json:"total"`
	RemainingBalance decimal.Decimal   `json:"remaining_balance"`
}

type CheckoutHTTPResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Receipt *ReceiptJSON `json:"receipt,omitempty"`
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CheckoutHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CheckoutHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	if req.RequestID == "" || req.CustomerID == "" {
		writeJSON(w, http.StatusBadRequest, CheckoutHTTPResponse{
			Success: false,
			Message: "missing required fields",
		})
		return
	}

	customer, ok := h.customers[req.CustomerID]
	if !ok {
		writeJSON(w, http.StatusBadRequest, CheckoutHTTPResponse{
			Success: false,
			Message: "unknown customer",
		})
		return
	}

	cart := domain.NewCart()
	for _, item := range req.Items {
		product, ok := h.catalog.Get(item.Product)
		if !ok {
			writeJSON(w, http.StatusBadRequest, CheckoutHTTPResponse{
				Success: false,
				Message: "unknown product: " + item.Product,
			})
			return
		}
		if err := cart.Add(product, item.Quantity); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, domain.ErrOutOfStock) {
				status = http.StatusGone
			}
			writeJSON(w, status, CheckoutHTTPResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
	}

	receipt, err := h.checkout.Checkout(r.Context(), req.RequestID, customer, cart)
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"

		switch {
		case errors.Is(err, service.ErrDuplicateRequest):
			status = http.StatusConflict
			message = "duplicate request"
		case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrProductExpired):
			status = http.StatusUnprocessableEntity
			message = err.Error()
		case errors.Is(err, domain.ErrInsufficientBalance):
			status = http.StatusPaymentRequired
			message = err.Error()
		case errors.Is(err, domain.ErrInsufficientStock):
			status = http.StatusGone
			message = err.Error()
		}

		writeJSON(w, status, CheckoutHTTPResponse{
			Success: false,
			Message: message,
		})
		return
	}

	writeJSON(w, http.StatusOK, CheckoutHTTPResponse{
		Success: true,
		Message: "checkout complete",
		Receipt: receiptJSON(receipt),
	})
}

type ProductJSON struct {
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  int              `json:"quantity"`
	Shippable bool             `json:"shippable"`
	Weight    *decimal.Decimal `json:"weight,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

func (h *HTTPHandler) Products(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	products := h.catalog.List()
	out := make([]ProductJSON, 0, len(products))
	for _, p := range products {
		pj := ProductJSON{
			Name:      p.Name(),
			Price:     p.Price(),
			Quantity:  p.Quantity(),
			Shippable: p.Shippable(),
		}
		if p.Shippable() {
			weight := p.Weight()
			pj.Weight = &weight
		}
		if expiry, ok := p.Expiry(); ok {
			pj.ExpiresAt = &expiry
		}
		out = append(out, pj)
	}

	writeJSON(w, http.StatusOK, out)
}

type OrderJSON struct {
	ID          string            `json:"id"`
	Customer    string            `json:"customer"`
	Lines       []ReceiptLineJSON `json:"lines"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	ShippingFee decimal.Decimal   `json:"shipping_fee"`
	Total       decimal.Decimal   `json:"total"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (h *HTTPHandler) Orders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orders, err := h.db.RecentOrders(r.Context(), 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	out := make([]OrderJSON, 0, len(orders))
	for _, order := range orders {
		oj := OrderJSON{
			ID:          order.ID,
			Customer:    order.Customer,
			Subtotal:    order.Subtotal,
			ShippingFee: order.ShippingFee,
			Total:       order.Total,
			CreatedAt:   order.CreatedAt,
		}
		for _, line := range order.Lines {
			oj.Lines = append(oj.Lines, ReceiptLineJSON(line))
		}
		out = append(out, oj)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func receiptJSON(receipt domain.Receipt) *ReceiptJSON {
	rj := &ReceiptJSON{
		Subtotal:         receipt.Subtotal,
		ShippingFee:      receipt.ShippingFee,
		Total:            receipt.Total,
		RemainingBalance: receipt.RemainingBalance,
	}
	for _, line := range receipt.Lines {
		rj.Lines = append(rj.Lines, ReceiptLineJSON(line))
	}
	return rj
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
