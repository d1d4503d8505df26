package handler

import (
	"net/http"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// UsageLogHandler handles usage log endpoints. Logs cannot be changed
// once written.
type UsageLogHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewUsageLogHandler creates a new usage log handler
func NewUsageLogHandler(svc *service.InventoryService, log *logger.Logger) *UsageLogHandler {
	return &UsageLogHandler{
		service: svc,
		logger:  log,
	}
}

// List lists usage logs, optionally for ?inventory_id=
func (h *UsageLogHandler) List(w http.ResponseWriter, r *http.Request) {
	p := httputil.ParsePagination(r)

	logs, total, err := h.service.ListUsageLogs(r.Context(), r.URL.Query().Get("inventory_id"), p.PerPage, p.Offset())
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, logs, httputil.NewMeta(p.Page, p.PerPage, total))
}

// Get gets a usage log by ID
func (h *UsageLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.GetUsageLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSON(w, http.StatusOK, l)
}

// Create records consumption by the current user
func (h *UsageLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.UsageLogRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	l, err := h.service.RecordUsage(r.Context(), &req)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.Created(w, l)
}
