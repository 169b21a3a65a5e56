package catalog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/velora-shop/backend-storefront/internal/common"
)

// Handler exposes read-only catalog endpoints.
type Handler struct {
	Svc *Service
}

// Products lists the catalog page by page.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, h.Svc.DefaultLimit)
	products, total, err := h.Svc.List(r.Context(), page, perPage)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load products", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": products,
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	})
}

// ProductDetail returns a single product by slug.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "slug is required", nil)
		return
	}
	product, err := h.Svc.GetBySlug(r.Context(), slug)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load product", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}
