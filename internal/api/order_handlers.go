package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/orders"
)

// OrderHandlers serves checkout, order history and cancellation.
type OrderHandlers struct {
	orders *orders.Service
}

func NewOrderHandlers(svc *orders.Service) *OrderHandlers {
	return &OrderHandlers{orders: svc}
}

func (h *OrderHandlers) Place(w http.ResponseWriter, r *http.Request) {
	var input orders.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.orders.Place(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandlers) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Cancel handles the only supported order mutation, Placed to Cancelled.
func (h *OrderHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status != orders.StatusCancelled {
		respondError(w, "Only cancellation is supported", http.StatusBadRequest)
		return
	}

	order, err := h.orders.Cancel(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandlers) respondOrderError(w http.ResponseWriter, err error) {
	var (
		notFound     *orders.ProductNotFoundError
		insufficient *orders.InsufficientStockError
		conflict     *orders.StockConflictError
	)

	switch {
	case errors.Is(err, orders.ErrUnauthorized):
		respondError(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, orders.ErrInvalidRequest):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, "Order not found", http.StatusNotFound)
	case errors.As(err, &notFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &insufficient):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &conflict):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		respondError(w, "Failed to process order", http.StatusInternalServerError)
	}
}
