package review_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/review"
	"github.com/example/storefront/internal/store/memstore"
	"github.com/example/storefront/internal/user"
)

type reviewFixture struct {
	svc *review.Service
	mem *memstore.Store
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	mem := memstore.New()
	return &reviewFixture{
		svc: review.NewService(mem.Reviews(), mem.Orders(), mem.Users()),
		mem: mem,
	}
}

func (f *reviewFixture) seedUser(t *testing.T, id, name string) {
	t.Helper()
	err := f.mem.Users().Create(context.Background(), &user.User{
		ID:           id,
		Email:        id + "@example.com",
		Name:         name,
		PasswordHash: "x",
		Role:         user.RoleCustomer,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	require.NoError(t, err)
}

func (f *reviewFixture) seedOrder(t *testing.T, userID, productID string, status orders.Status) {
	t.Helper()
	err := f.mem.Orders().Create(context.Background(), &orders.Order{
		ID:          "order-" + userID + "-" + productID,
		UserID:      userID,
		Items:       []orders.OrderItem{{ProductID: productID, Quantity: 1, Price: 100}},
		TotalAmount: 100,
		Status:      status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
	require.NoError(t, err)
}

func validReview() review.ReviewInput {
	return review.ReviewInput{
		ProductID: "prod-1",
		Rating:    4,
		Title:     "Works well",
		Text:      "Did what it said on the box.",
	}
}

func TestAdd_VerifiedPurchase(t *testing.T) {
	f := newReviewFixture(t)
	f.seedUser(t, "user-1", "Jane")
	f.seedOrder(t, "user-1", "prod-1", orders.StatusPlaced)

	r, err := f.svc.Add(context.Background(), "user-1", validReview())
	require.NoError(t, err)

	assert.True(t, r.VerifiedPurchase)
	assert.Equal(t, "Jane", r.AuthorName)
	assert.Equal(t, 4, r.Rating)
}

func TestAdd_UnverifiedWithoutPurchase(t *testing.T) {
	f := newReviewFixture(t)
	f.seedUser(t, "user-1", "Jane")

	r, err := f.svc.Add(context.Background(), "user-1", validReview())
	require.NoError(t, err)
	assert.False(t, r.VerifiedPurchase)
}

func TestAdd_CancelledOrderDoesNotVerify(t *testing.T) {
	f := newReviewFixture(t)
	f.seedUser(t, "user-1", "Jane")
	f.seedOrder(t, "user-1", "prod-1", orders.StatusCancelled)

	r, err := f.svc.Add(context.Background(), "user-1", validReview())
	require.NoError(t, err)
	assert.False(t, r.VerifiedPurchase)
}

func TestAdd_DuplicateRejected(t *testing.T) {
	f := newReviewFixture(t)
	f.seedUser(t, "user-1", "Jane")
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "user-1", validReview())
	require.NoError(t, err)

	_, err = f.svc.Add(ctx, "user-1", validReview())
	assert.ErrorIs(t, err, review.ErrDuplicateReview)

	// A different user may still review the same product.
	f.seedUser(t, "user-2", "Joe")
	_, err = f.svc.Add(ctx, "user-2", validReview())
	assert.NoError(t, err)
}

func TestAdd_Validation(t *testing.T) {
	f := newReviewFixture(t)
	f.seedUser(t, "user-1", "Jane")
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*review.ReviewInput)
		want   error
	}{
		{"missing product", func(in *review.ReviewInput) { in.ProductID = "" }, review.ErrMissingField},
		{"missing title", func(in *review.ReviewInput) { in.Title = "" }, review.ErrMissingField},
		{"missing text", func(in *review.ReviewInput) { in.Text = "" }, review.ErrMissingField},
		{"rating too low", func(in *review.ReviewInput) { in.Rating = -1 }, review.ErrInvalidRating},
		{"rating too high", func(in *review.ReviewInput) { in.Rating = 6 }, review.ErrInvalidRating},
		{"title too long", func(in *review.ReviewInput) { in.Title = strings.Repeat("x", 101) }, review.ErrTitleTooLong},
		{"text too long", func(in *review.ReviewInput) { in.Text = strings.Repeat("x", 1001) }, review.ErrTextTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validReview()
			tc.mutate(&in)
			_, err := f.svc.Add(ctx, "user-1", in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAdd_LengthLimitsCountCharacters(t *testing.T) {
	f := newReviewFixture(t)
	f.seedUser(t, "user-1", "Jane")
	ctx := context.Background()

	// 100 multibyte characters fit the title limit despite the byte
	// length being triple that.
	in := validReview()
	in.Title = strings.Repeat("良", 100)
	in.Text = strings.Repeat("良", 1000)
	_, err := f.svc.Add(ctx, "user-1", in)
	require.NoError(t, err)

	f.seedUser(t, "user-2", "Joe")
	in = validReview()
	in.Title = strings.Repeat("良", 101)
	_, err = f.svc.Add(ctx, "user-2", in)
	assert.ErrorIs(t, err, review.ErrTitleTooLong)

	in = validReview()
	in.Text = strings.Repeat("良", 1001)
	_, err = f.svc.Add(ctx, "user-2", in)
	assert.ErrorIs(t, err, review.ErrTextTooLong)
}

func TestListForProduct(t *testing.T) {
	f := newReviewFixture(t)
	f.seedUser(t, "user-1", "Jane")
	f.seedUser(t, "user-2", "Joe")
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "user-1", validReview())
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, "user-2", validReview())
	require.NoError(t, err)

	other := validReview()
	other.ProductID = "prod-2"
	_, err = f.svc.Add(ctx, "user-1", other)
	require.NoError(t, err)

	reviews, err := f.svc.ListForProduct(ctx, "prod-1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	for _, r := range reviews {
		assert.Equal(t, "prod-1", r.ProductID)
		assert.NotEmpty(t, r.AuthorName)
	}
}
