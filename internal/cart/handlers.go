package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/velora-shop/backend-storefront/internal/common"
	"github.com/velora-shop/backend-storefront/internal/obs"
)

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Currency string
}

type addItemPayload struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

type updateItemPayload struct {
	Qty *int `json:"qty" validate:"required,gte=0"`
}

// Create creates a fresh empty cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, "create", err)
		return
	}
	h.observe("create", "ok")
	h.render(w, http.StatusCreated, c)
}

// Get returns cart contents and derived totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "get", err)
		return
	}
	h.render(w, http.StatusOK, c)
}

// AddItem adds or merges a cart line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	c, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), payload.ProductID, payload.Qty)
	if err != nil {
		h.writeError(w, "add_item", err)
		return
	}
	h.observe("add_item", "ok")
	h.render(w, http.StatusOK, c)
}

// UpdateItem sets a line's quantity. Quantity zero removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload updateItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	c, err := h.Svc.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), *payload.Qty)
	if err != nil {
		h.writeError(w, "update_item", err)
		return
	}
	h.observe("update_item", "ok")
	h.render(w, http.StatusOK, c)
}

// RemoveItem deletes a cart line. Unknown ids are a no-op.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		h.writeError(w, "remove_item", err)
		return
	}
	h.observe("remove_item", "ok")
	h.render(w, http.StatusOK, c)
}

// Clear replaces the cart with a fresh empty one.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.Clear(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "clear", err)
		return
	}
	h.observe("clear", "ok")
	h.render(w, http.StatusOK, c)
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *Handler) render(w http.ResponseWriter, status int, c Cart) {
	common.JSON(w, status, map[string]any{
		"data": map[string]any{
			"cart":     c,
			"currency": h.Currency,
		},
	})
}

func (h *Handler) observe(op, result string) {
	if obs.CartMutationsTotal != nil {
		obs.CartMutationsTotal.WithLabelValues(op, result).Inc()
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	switch {
	case errors.Is(err, ErrBelowMinimumOrder):
		h.observe(op, "below_moq")
		common.JSONError(w, http.StatusUnprocessableEntity, "BELOW_MOQ", err.Error(), nil)
	case errors.Is(err, ErrInsufficientStock):
		h.observe(op, "insufficient_stock")
		common.JSONError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", err.Error(), nil)
	case errors.Is(err, ErrItemNotFound):
		h.observe(op, "item_not_found")
		common.JSONError(w, http.StatusNotFound, "ITEM_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		h.observe(op, "not_found")
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		h.observe(op, "invalid_input")
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		h.observe(op, "error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}
