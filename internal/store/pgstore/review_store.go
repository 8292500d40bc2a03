package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/storefront/internal/review"
)

type ReviewStore struct {
	db *sql.DB
}

func (s *ReviewStore) Create(ctx context.Context, r *review.Review) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (id, product_id, user_id, rating, title, text, verified_purchase, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.ProductID, r.UserID, r.Rating, r.Title, r.Text, r.VerifiedPurchase, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return review.ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (s *ReviewStore) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, user_id, rating, title, text, verified_purchase, created_at, updated_at
		 FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []review.Review{}
	for rows.Next() {
		var r review.Review
		err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title,
			&r.Text, &r.VerifiedPurchase, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
