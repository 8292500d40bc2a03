package address

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAddressNotFound covers both a missing address and one owned by
	// another user.
	ErrAddressNotFound = errors.New("address not found")
	ErrMissingField    = errors.New("label, name, street, city, state, zip and country are required")
)

// Address is a saved shipping address in a user's address book.
type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Label     string    `json:"name"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Street    string    `json:"address"`
	Apartment string    `json:"apartment,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the persistence port for addresses.
type Store interface {
	Create(ctx context.Context, a *Address) error
	Get(ctx context.Context, id string) (*Address, error)
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	Delete(ctx context.Context, id string) error
}
