package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// ItemHandler handles inventory batch endpoints and the reports over them
type ItemHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(svc *service.InventoryService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service: svc,
		logger:  log,
	}
}

func batchFilter(r *http.Request) domain.BatchFilter {
	return domain.BatchFilter{
		ProductID: r.URL.Query().Get("product_id"),
		Status:    domain.Status(r.URL.Query().Get("status")),
	}
}

// List lists batches with their computed status
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	p := httputil.ParsePagination(r)

	items, total, err := h.service.ListBatches(r.Context(), batchFilter(r), p.PerPage, p.Offset())
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, items, httputil.NewMeta(p.Page, p.PerPage, total))
}

// Get gets a batch by ID
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Create records a batch directly
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	item, err := h.service.CreateBatch(r.Context(), &req)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.Created(w, item)
}

// Update replaces a batch
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	item, err := h.service.UpdateBatch(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Delete deletes a batch
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBatch(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.NoContent(w)
}

// ExpiringSoon lists batches expiring within ?days= (default 7)
func (h *ItemHandler) ExpiringSoon(w http.ResponseWriter, r *http.Request) {
	days := h.service.DefaultExpiringSoonDays()
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.Error(w, errors.Validation(map[string]string{"days": "must be a non-negative integer"}))
			return
		}
		days = n
	}

	items, err := h.service.ExpiringSoon(r.Context(), days)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// DashboardStats returns the inventory summary counts
func (h *ItemHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

// Export writes the batch list as a CSV download
func (h *ItemHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportBatches(r.Context(), batchFilter(r), &buf); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
