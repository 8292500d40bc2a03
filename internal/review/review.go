package review

import (
	"context"
	"errors"
	"time"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("you have already reviewed this product")
	ErrMissingField    = errors.New("product, rating, title and text are required")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrTitleTooLong    = errors.New("title cannot be more than 100 characters")
	ErrTextTooLong     = errors.New("text cannot be more than 1000 characters")
)

// Review is a product review. One review per (product, user) pair;
// stores enforce the uniqueness and report violations as
// ErrDuplicateReview.
type Review struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product"`
	UserID           string    `json:"user"`
	Rating           int       `json:"rating"`
	Title            string    `json:"title"`
	Text             string    `json:"text"`
	VerifiedPurchase bool      `json:"verifiedPurchase"`
	AuthorName       string    `json:"authorName,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Store is the persistence port for reviews.
type Store interface {
	Create(ctx context.Context, r *Review) error
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
}
