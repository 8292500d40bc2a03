package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/address"
	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/review"
	"github.com/example/storefront/internal/store/memstore"
	"github.com/example/storefront/internal/user"
)

type testServer struct {
	router http.Handler
	tokens *auth.TokenService
	users  *user.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mem := memstore.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService("test-secret-key-that-is-long-enough", 15*time.Minute, 7*24*time.Hour)

	userSvc := user.NewService(mem.Users())
	catalogSvc := catalog.NewService(mem.Products())
	orderSvc := orders.NewService(mem.Products(), mem.Orders(), log)
	reviewSvc := review.NewService(mem.Reviews(), mem.Orders(), mem.Users())
	addressSvc := address.NewService(mem.Addresses())

	router := api.NewRouter(api.Handlers{
		Auth:      api.NewAuthHandlers(userSvc, tokens),
		Products:  api.NewProductHandlers(catalogSvc),
		Orders:    api.NewOrderHandlers(orderSvc),
		Reviews:   api.NewReviewHandlers(reviewSvc),
		Addresses: api.NewAddressHandlers(addressSvc),
	}, tokens, log)

	return &testServer{router: router, tokens: tokens, users: userSvc}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// registerUser creates an account directly and returns an access token.
func (ts *testServer) registerUser(t *testing.T, email, role string) (string, string) {
	t.Helper()

	u, err := ts.users.Register(context.Background(), email, "s3cret-pass", "Test User")
	require.NoError(t, err)
	if role == user.RoleSeller {
		u, err = ts.users.UpgradeToSeller(context.Background(), u.ID)
		require.NoError(t, err)
	}

	token, _, err := ts.tokens.IssueAccessToken(u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return u.ID, token
}

func (ts *testServer) createProduct(t *testing.T, sellerToken string, stock int) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/products", sellerToken, catalog.ProductInput{
		Name:        "Widget",
		Description: "A widget",
		Price:       100,
		ImageURL:    "https://example.com/w.jpg",
		Category:    "tools",
		Stock:       stock,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var p catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "jane@example.com",
		"password": "s3cret-pass",
		"name":     "Jane",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, "customer", resp.User.Role)

	cookies := rec.Result().Cookies()
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "access_token")
	assert.Contains(t, names, "refresh_token")

	// Duplicate email.
	rec = ts.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "jane@example.com",
		"password": "another-pass",
		"name":     "Janet",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "jane@example.com", user.RoleCustomer)

	rec := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong-pass1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "jane@example.com", user.RoleCustomer)

	rec := ts.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jane@example.com", resp.Email)

	rec = ts.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductEndpoints_SellerGate(t *testing.T) {
	ts := newTestServer(t)
	_, customerToken := ts.registerUser(t, "buyer@example.com", user.RoleCustomer)
	_, sellerToken := ts.registerUser(t, "seller@example.com", user.RoleSeller)

	input := catalog.ProductInput{
		Name:        "Widget",
		Description: "A widget",
		Price:       100,
		ImageURL:    "https://example.com/w.jpg",
		Category:    "tools",
		Stock:       5,
	}

	rec := ts.do(t, http.MethodPost, "/products", "", input)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/products", customerToken, input)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/products", sellerToken, input)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestProductEndpoints_OwnershipOnUpdate(t *testing.T) {
	ts := newTestServer(t)
	_, sellerToken := ts.registerUser(t, "seller@example.com", user.RoleSeller)
	_, rivalToken := ts.registerUser(t, "rival@example.com", user.RoleSeller)

	id := ts.createProduct(t, sellerToken, 5)

	input := catalog.ProductInput{
		Name:        "Widget v2",
		Description: "A widget",
		Price:       150,
		ImageURL:    "https://example.com/w.jpg",
		Category:    "tools",
		Stock:       5,
	}

	rec := ts.do(t, http.MethodPut, "/products/"+id, rivalToken, input)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPut, "/products/"+id, sellerToken, input)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/products/"+id, rivalToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductList_Public(t *testing.T) {
	ts := newTestServer(t)
	_, sellerToken := ts.registerUser(t, "seller@example.com", user.RoleSeller)
	id := ts.createProduct(t, sellerToken, 5)

	rec := ts.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, id, products[0].ID)

	rec = ts.do(t, http.MethodGet, "/products/"+id, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, sellerToken := ts.registerUser(t, "seller@example.com", user.RoleSeller)
	_, buyerToken := ts.registerUser(t, "buyer@example.com", user.RoleCustomer)

	id := ts.createProduct(t, sellerToken, 5)

	rec := ts.do(t, http.MethodPost, "/orders", "", orders.PlaceOrderInput{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/orders", buyerToken, orders.PlaceOrderInput{
		Items:       []orders.LineItem{{ProductID: id, Quantity: 2}},
		TotalAmount: 200,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var placed orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, orders.StatusPlaced, placed.Status)

	// Insufficient stock is a 400 with the product named.
	rec = ts.do(t, http.MethodPost, "/orders", buyerToken, orders.PlaceOrderInput{
		Items:       []orders.LineItem{{ProductID: id, Quantity: 10}},
		TotalAmount: 1000,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")

	rec = ts.do(t, http.MethodGet, "/orders", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCancelOrderEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, sellerToken := ts.registerUser(t, "seller@example.com", user.RoleSeller)
	_, buyerToken := ts.registerUser(t, "buyer@example.com", user.RoleCustomer)
	_, otherToken := ts.registerUser(t, "other@example.com", user.RoleCustomer)

	id := ts.createProduct(t, sellerToken, 5)

	rec := ts.do(t, http.MethodPost, "/orders", buyerToken, orders.PlaceOrderInput{
		Items:       []orders.LineItem{{ProductID: id, Quantity: 1}},
		TotalAmount: 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var placed orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))

	// Only cancellation is accepted as a status change.
	rec = ts.do(t, http.MethodPatch, "/orders/"+placed.ID, buyerToken, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Someone else's order looks like it does not exist.
	rec = ts.do(t, http.MethodPatch, "/orders/"+placed.ID, otherToken, map[string]string{"status": "Cancelled"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/orders/"+placed.ID, buyerToken, map[string]string{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, rec.Code)

	var cancelled orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)
}

func TestReviewEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, sellerToken := ts.registerUser(t, "seller@example.com", user.RoleSeller)
	_, buyerToken := ts.registerUser(t, "buyer@example.com", user.RoleCustomer)

	id := ts.createProduct(t, sellerToken, 5)

	rec := ts.do(t, http.MethodPost, "/orders", buyerToken, orders.PlaceOrderInput{
		Items:       []orders.LineItem{{ProductID: id, Quantity: 1}},
		TotalAmount: 100,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	input := review.ReviewInput{
		ProductID: id,
		Rating:    5,
		Title:     "Great",
		Text:      "Exactly as described.",
	}

	rec = ts.do(t, http.MethodPost, "/reviews", "", input)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/reviews", buyerToken, input)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created review.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.VerifiedPurchase)

	rec = ts.do(t, http.MethodPost, "/reviews", buyerToken, input)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodGet, "/reviews/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reviews []review.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
	assert.Len(t, reviews, 1)
}

func TestAddressEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "jane@example.com", user.RoleCustomer)
	_, otherToken := ts.registerUser(t, "joe@example.com", user.RoleCustomer)

	input := address.AddressInput{
		Label:     "Home",
		FirstName: "Jane",
		LastName:  "Doe",
		Street:    "1 Main St",
		City:      "Springfield",
		State:     "IL",
		Zip:       "62701",
		Country:   "USA",
	}

	rec := ts.do(t, http.MethodPost, "/addresses", token, input)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created address.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = ts.do(t, http.MethodGet, "/addresses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []address.Address
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = ts.do(t, http.MethodDelete, "/addresses/"+created.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/addresses/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpgradeToSellerEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.registerUser(t, "jane@example.com", user.RoleCustomer)

	rec := ts.do(t, http.MethodPost, "/user/upgrade-to-seller", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "seller", resp.User.Role)
}
