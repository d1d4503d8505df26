package handler

import (
	"net/http"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(svc *service.InventoryService, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		logger:  log,
	}
}

// List lists categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	p := httputil.ParsePagination(r)

	categories, total, err := h.service.ListCategories(r.Context(), p.PerPage, p.Offset())
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, categories, httputil.NewMeta(p.Page, p.PerPage, total))
}

// Get gets a category by ID
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, category)
}

// Create creates a category
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), &req)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.Created(w, category)
}

// Update replaces a category
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.CategoryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, category)
}

// Delete deletes a category
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.NoContent(w)
}
