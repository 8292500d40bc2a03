package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storefront/internal/review"
)

type ReviewStore struct {
	collection *mongo.Collection
}

type reviewDoc struct {
	ID               string    `bson:"_id"`
	ProductID        string    `bson:"product_id"`
	UserID           string    `bson:"user_id"`
	Rating           int       `bson:"rating"`
	Title            string    `bson:"title"`
	Text             string    `bson:"text"`
	VerifiedPurchase bool      `bson:"verified_purchase"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func (d reviewDoc) toReview() review.Review {
	return review.Review{
		ID:               d.ID,
		ProductID:        d.ProductID,
		UserID:           d.UserID,
		Rating:           d.Rating,
		Title:            d.Title,
		Text:             d.Text,
		VerifiedPurchase: d.VerifiedPurchase,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// Create inserts a review; the unique (product_id, user_id) index turns
// a second review from the same user into ErrDuplicateReview.
func (s *ReviewStore) Create(ctx context.Context, r *review.Review) error {
	doc := reviewDoc{
		ID:               r.ID,
		ProductID:        r.ProductID,
		UserID:           r.UserID,
		Rating:           r.Rating,
		Title:            r.Title,
		Text:             r.Text,
		VerifiedPurchase: r.VerifiedPurchase,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return review.ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (s *ReviewStore) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reviewDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	out := make([]review.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toReview())
	}
	return out, nil
}
