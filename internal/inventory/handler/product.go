package handler

import (
	"net/http"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(svc *service.InventoryService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  log,
	}
}

// List lists products, optionally by category or a name/barcode/brand search
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	p := httputil.ParsePagination(r)
	filter := domain.ProductFilter{
		CategoryID: r.URL.Query().Get("category_id"),
		Search:     r.URL.Query().Get("search"),
	}

	products, total, err := h.service.ListProducts(r.Context(), filter, p.PerPage, p.Offset())
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, products, httputil.NewMeta(p.Page, p.PerPage, total))
}

// Get gets a product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// SearchByBarcode looks a product up by ?barcode=
func (h *ProductHandler) SearchByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.SearchByBarcode(r.Context(), r.URL.Query().Get("barcode"))
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// Create creates a product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &req)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.Created(w, product)
}

// Update replaces a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// Delete deletes a product and its batches
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.NoContent(w)
}
