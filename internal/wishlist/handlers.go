package wishlist

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/velora-shop/backend-storefront/internal/common"
)

// Handler wires the wishlist service to HTTP.
type Handler struct {
	Svc *Service
}

// Get returns the wishlist for the given owner id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist service not configured", nil)
		return
	}
	wl, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": wl})
}

// AddItem appends a product to the wishlist.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist service not configured", nil)
		return
	}
	var payload struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	payload.ProductID = strings.TrimSpace(payload.ProductID)
	if payload.ProductID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "productId is required", nil)
		return
	}
	wl, err := h.Svc.Add(r.Context(), chi.URLParam(r, "id"), payload.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": wl})
}

// RemoveItem drops a product from the wishlist.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist service not configured", nil)
		return
	}
	wl, err := h.Svc.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": wl})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidInput) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
}
