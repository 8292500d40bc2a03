package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront/internal/address"
	"github.com/example/storefront/internal/api/middleware"
)

type AddressHandlers struct {
	addresses *address.Service
}

func NewAddressHandlers(addresses *address.Service) *AddressHandlers {
	return &AddressHandlers{addresses: addresses}
}

func (h *AddressHandlers) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.addresses.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, "Failed to list addresses", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AddressHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in address.AddressInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.addresses.Add(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		if errors.Is(err, address.ErrMissingField) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondError(w, "Failed to save address", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *AddressHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.addresses.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		if errors.Is(err, address.ErrAddressNotFound) {
			respondError(w, "Address not found", http.StatusNotFound)
			return
		}
		respondError(w, "Failed to delete address", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Address deleted"})
}
