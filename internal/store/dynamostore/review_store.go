package dynamostore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/storefront/internal/review"
)

type ReviewStore struct {
	client *dynamodb.Client
	table  string
}

// reviewItem keys the table by a pk of "<product>#<user>" so the one
// review per (product, user) rule is a plain conditional put. The id
// attribute keeps the review's own identifier. GSI1 partitions by
// product for listing.
type reviewItem struct {
	PK               string `dynamodbav:"pk"`
	ID               string `dynamodbav:"id"`
	ProductID        string `dynamodbav:"product_id"`
	UserID           string `dynamodbav:"user_id"`
	Rating           int    `dynamodbav:"rating"`
	Title            string `dynamodbav:"title"`
	Text             string `dynamodbav:"text"`
	VerifiedPurchase bool   `dynamodbav:"verified_purchase"`
	CreatedAt        string `dynamodbav:"created_at"`
	UpdatedAt        string `dynamodbav:"updated_at"`
	GSI1PK           string `dynamodbav:"gsi1pk"`
}

func (it reviewItem) toReview() review.Review {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return review.Review{
		ID:               it.ID,
		ProductID:        it.ProductID,
		UserID:           it.UserID,
		Rating:           it.Rating,
		Title:            it.Title,
		Text:             it.Text,
		VerifiedPurchase: it.VerifiedPurchase,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}

func (s *ReviewStore) Create(ctx context.Context, r *review.Review) error {
	item := newReviewItem(r)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal review: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return review.ErrDuplicateReview
		}
		return fmt.Errorf("failed to put review: %w", err)
	}
	return nil
}

func newReviewItem(r *review.Review) reviewItem {
	return reviewItem{
		PK:               r.ProductID + "#" + r.UserID,
		ID:               r.ID,
		ProductID:        r.ProductID,
		UserID:           r.UserID,
		Rating:           r.Rating,
		Title:            r.Title,
		Text:             r.Text,
		VerifiedPurchase: r.VerifiedPurchase,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339Nano),
		GSI1PK:           r.ProductID,
	}
}

func (s *ReviewStore) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	result, err := queryByPartition(ctx, s.client, s.table, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	out := make([]review.Review, 0, len(result.Items))
	for _, raw := range result.Items {
		var it reviewItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, fmt.Errorf("failed to unmarshal review: %w", err)
		}
		out = append(out, it.toReview())
	}
	return out, nil
}
