package handler

import (
	"net/http"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
)

// ScanHandler handles barcode scan ingestion
type ScanHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(svc *service.InventoryService, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		service: svc,
		logger:  log,
	}
}

// Add ingests a scanned product and its batch
func (h *ScanHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	view, err := h.service.Ingest(r.Context(), &req)
	if err != nil {
		httputil.LogError(w, r, h.logger, err)
		return
	}

	httputil.JSONWithMessage(w, http.StatusCreated, "Product added to inventory successfully!", view)
}
