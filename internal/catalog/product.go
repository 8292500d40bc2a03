package catalog

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidName     = errors.New("name is required and cannot be more than 60 characters")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidStock    = errors.New("stock cannot be negative")
	ErrMissingField    = errors.New("description, image URL and category are required")
	ErrNotSeller       = errors.New("product does not belong to this seller")

	// ErrStockConflict reports that a conditional stock update matched no
	// record: the product vanished or its stock dropped below the
	// requested quantity between read and write.
	ErrStockConflict = errors.New("stock changed concurrently")
)

const maxNameLength = 60

// Product is a sellable catalog item. Stock never goes negative: the
// only writers are seller edits and the order workflow's conditional
// decrement.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Category    string    `json:"category"`
	Rating      float64   `json:"rating"`
	Stock       int       `json:"stock"`
	SellerID    string    `json:"seller"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is the persistence port for products.
//
// DecrementStock is the concurrency-safety mechanism for order
// placement: it must apply the decrement only if the product's stock is
// still >= qty at the moment of the write, as a single atomic store
// operation, and return ErrStockConflict when no record matched.
type Store interface {
	List(ctx context.Context, category string) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error

	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}
