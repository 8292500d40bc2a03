package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/review"
)

type ReviewHandlers struct {
	reviews *review.Service
}

func NewReviewHandlers(reviews *review.Service) *ReviewHandlers {
	return &ReviewHandlers{reviews: reviews}
}

func (h *ReviewHandlers) ListForProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	reviews, err := h.reviews.ListForProduct(r.Context(), productID)
	if err != nil {
		respondError(w, "Failed to list reviews", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in review.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.reviews.Add(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrDuplicateReview):
			respondError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, review.ErrMissingField),
			errors.Is(err, review.ErrInvalidRating),
			errors.Is(err, review.ErrTitleTooLong),
			errors.Is(err, review.ErrTextTooLong):
			respondError(w, err.Error(), http.StatusBadRequest)
		default:
			respondError(w, "Failed to save review", http.StatusInternalServerError)
		}
		return
	}
	respondJSON(w, http.StatusCreated, created)
}
