package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/storefront/internal/orders"
)

func TestRespondOrderErrorStatuses(t *testing.T) {
	h := NewOrderHandlers(nil)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unauthorized", orders.ErrUnauthorized, http.StatusUnauthorized},
		{"invalid request", orders.ErrInvalidRequest, http.StatusBadRequest},
		{"order not found", orders.ErrOrderNotFound, http.StatusNotFound},
		{"unknown product", &orders.ProductNotFoundError{ProductID: "prod-1"}, http.StatusNotFound},
		{"insufficient stock", &orders.InsufficientStockError{
			ProductID: "prod-1", Name: "widget", Requested: 3, Available: 1,
		}, http.StatusBadRequest},
		// A lost decrement race is a client-retryable checkout failure,
		// reported the same way as insufficient stock.
		{"stock conflict", &orders.StockConflictError{ProductID: "prod-1"}, http.StatusBadRequest},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.respondOrderError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
