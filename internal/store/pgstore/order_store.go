package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/orders"
)

type OrderStore struct {
	db *sql.DB
}

func (s *OrderStore) Create(ctx context.Context, o *orders.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, items, total_amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.UserID, items, o.TotalAmount, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func scanOrder(row interface{ Scan(...any) error }) (*orders.Order, error) {
	var (
		o     orders.Order
		items []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	return &o, nil
}

const orderColumns = `id, user_id, items, total_amount, status, created_at, updated_at`

func (s *OrderStore) GetByID(ctx context.Context, id string) (*orders.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return o, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []orders.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

// CancelForUser flips the status with a single UPDATE keyed on both the
// order and its owner, so an order belonging to someone else is
// indistinguishable from a missing one. Re-cancelling matches the row
// again and simply returns the cancelled order.
func (s *OrderStore) CancelForUser(ctx context.Context, orderID, userID string) (*orders.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE orders SET status = $1, updated_at = now()
		 WHERE id = $2 AND user_id = $3
		 RETURNING `+orderColumns,
		orders.StatusCancelled, orderID, userID,
	)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	return o, nil
}

func (s *OrderStore) HasUserPurchased(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE user_id = $1 AND status = $2
			  AND items @> $3::jsonb
		 )`,
		userID, orders.StatusPlaced, fmt.Sprintf(`[{"product": %q}]`, productID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return exists, nil
}
