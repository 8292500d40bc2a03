package orders

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPlaced    Status = "Placed"
	StatusCancelled Status = "Cancelled"
)

var (
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidRequest rejects malformed input (no items, non-positive
	// quantity or total) before any store access.
	ErrInvalidRequest = errors.New("missing required order information")

	// ErrOrderNotFound covers both a missing order and an order owned by
	// someone else, so existence is never leaked to non-owners.
	ErrOrderNotFound = errors.New("order not found")
)

// ProductNotFoundError names the product a checkout line referenced that
// does not exist in the catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError reports a line whose requested quantity exceeds
// the stock available at validation time.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested: %d, available: %d)",
		e.Name, e.Requested, e.Available)
}

// StockConflictError reports that a concurrent purchase won the race
// between validation and reservation for this product.
type StockConflictError struct {
	ProductID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("failed to reserve stock for product %s: stock changed concurrently", e.ProductID)
}

// OrderItem is a value snapshot of a product at purchase time. Later
// catalog edits never change it.
type OrderItem struct {
	ProductID   string `json:"product"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Price       int    `json:"price"`
	ImageURL    string `json:"imageUrl"`
}

// Order is a checkout transaction. Once placed, items and total are
// immutable; only Status may transition, Placed to Cancelled.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user"`
	Items       []OrderItem `json:"items"`
	TotalAmount int         `json:"totalAmount"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Store is the persistence port for orders.
//
// CancelForUser performs a single conditional update keyed on both the
// order ID and its owner, returning ErrOrderNotFound when nothing
// matched. Cancelling an already-cancelled order is idempotent and
// returns the order in its cancelled state.
type Store interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	CancelForUser(ctx context.Context, orderID, userID string) (*Order, error)

	// HasUserPurchased reports whether the user has a placed order
	// containing the product. Used for verified-purchase review marking.
	HasUserPurchased(ctx context.Context, userID, productID string) (bool, error)
}
