package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
)

// MySQLAdapter persists the order ledger. Schema: see scripts/schema.sql.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) SaveOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer, subtotal, shipping_fee, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.Customer, order.Subtotal, order.ShippingFee, order.Total,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product, quantity, line_total)
			VALUES (?, ?, ?, ?, ?)`,
			order.ID, i, line.Name, line.Quantity, line.Total,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) RecentOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, customer, subtotal, shipping_fee, total, created_at
		FROM orders ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Customer, &order.Subtotal,
			&order.ShippingFee, &order.Total, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		lines, err := m.orderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}

	return orders, nil
}

func (m *MySQLAdapter) orderLines(ctx context.Context, orderID string) ([]domain.ReceiptLine, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT product, quantity, line_total
		FROM order_items WHERE order_id = ? ORDER BY position`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var lines []domain.ReceiptLine
	for rows.Next() {
		var line domain.ReceiptLine
		if err := rows.Scan(&line.Name, &line.Quantity, &line.Total); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
