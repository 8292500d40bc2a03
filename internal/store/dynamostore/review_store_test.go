package dynamostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/storefront/internal/review"
)

func TestReviewItemKeepsReviewID(t *testing.T) {
	now := time.Now()
	r := &review.Review{
		ID:               "rev-uuid",
		ProductID:        "prod-1",
		UserID:           "user-1",
		Rating:           5,
		Title:            "Great",
		Text:             "Would buy again.",
		VerifiedPurchase: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	item := newReviewItem(r)

	// The pair key enforces uniqueness; the id attribute stays the
	// identifier handed out at creation.
	assert.Equal(t, "prod-1#user-1", item.PK)
	assert.Equal(t, "rev-uuid", item.ID)
	assert.Equal(t, "prod-1", item.GSI1PK)

	back := item.toReview()
	assert.Equal(t, "rev-uuid", back.ID)
	assert.Equal(t, "prod-1", back.ProductID)
	assert.Equal(t, "user-1", back.UserID)
}
