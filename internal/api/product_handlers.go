package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/catalog"
)

// ProductHandlers serves the public catalog and seller product
// management.
type ProductHandlers struct {
	products *catalog.Service
}

func NewProductHandlers(products *catalog.Service) *ProductHandlers {
	return &ProductHandlers{products: products}
}

func (h *ProductHandlers) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products, err := h.products.List(r.Context(), category)
	if err != nil {
		respondError(w, "Failed to list products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, "Product not found", http.StatusNotFound)
			return
		}
		respondError(w, "Failed to load product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.products.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		h.respondProductError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.products.Update(r.Context(), middleware.GetUserID(r.Context()), id, in)
	if err != nil {
		h.respondProductError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.products.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.respondProductError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *ProductHandlers) respondProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrNotSeller):
		respondError(w, "You can only manage your own products", http.StatusForbidden)
	case errors.Is(err, catalog.ErrInvalidName),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidStock),
		errors.Is(err, catalog.ErrMissingField):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		respondError(w, "Failed to save product", http.StatusInternalServerError)
	}
}
