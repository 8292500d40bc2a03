package review

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/user"
)

const (
	maxTitleLength = 100
	maxTextLength  = 1000
)

// ReviewInput carries review fields submitted by a user.
type ReviewInput struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

type Service struct {
	reviews Store
	orders  orders.Store
	users   user.Store
}

func NewService(reviews Store, orderStore orders.Store, users user.Store) *Service {
	return &Service{reviews: reviews, orders: orderStore, users: users}
}

// Add creates a review. The review is marked as a verified purchase when
// the user has a placed order containing the product.
func (s *Service) Add(ctx context.Context, userID string, in ReviewInput) (*Review, error) {
	if in.ProductID == "" || in.Rating == 0 || in.Title == "" || in.Text == "" {
		return nil, ErrMissingField
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	// Length limits count characters, not bytes.
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	if utf8.RuneCountInString(in.Text) > maxTextLength {
		return nil, ErrTextTooLong
	}

	purchased, err := s.orders.HasUserPurchased(ctx, userID, in.ProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	r := &Review{
		ID:               uuid.New().String(),
		ProductID:        in.ProductID,
		UserID:           userID,
		Rating:           in.Rating,
		Title:            in.Title,
		Text:             in.Text,
		VerifiedPurchase: purchased,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}

	s.attachAuthor(ctx, r)
	return r, nil
}

// ListForProduct returns a product's reviews, newest first, with author
// names attached for display.
func (s *Service) ListForProduct(ctx context.Context, productID string) ([]Review, error) {
	rs, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range rs {
		s.attachAuthor(ctx, &rs[i])
	}
	return rs, nil
}

func (s *Service) attachAuthor(ctx context.Context, r *Review) {
	u, err := s.users.GetByID(ctx, r.UserID)
	if err != nil {
		return
	}
	r.AuthorName = u.Name
}
