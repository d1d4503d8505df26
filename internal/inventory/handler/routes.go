package handler

import (
	"net/http"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/service"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the inventory API on r. Every route runs behind requireAuth.
func Routes(r chi.Router, svc *service.InventoryService, requireAuth func(http.Handler) http.Handler, log *logger.Logger) {
	categoryHandler := NewCategoryHandler(svc, log)
	productHandler := NewProductHandler(svc, log)
	itemHandler := NewItemHandler(svc, log)
	usageLogHandler := NewUsageLogHandler(svc, log)
	scanHandler := NewScanHandler(svc, log)

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Post("/", categoryHandler.Create)
			r.Get("/{id}", categoryHandler.Get)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/search_by_barcode", productHandler.SearchByBarcode)
			r.Get("/{id}", productHandler.Get)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Post("/", itemHandler.Create)
			r.Get("/expiring_soon", itemHandler.ExpiringSoon)
			r.Get("/dashboard_stats", itemHandler.DashboardStats)
			r.Get("/export", itemHandler.Export)
			r.Get("/{id}", itemHandler.Get)
			r.Put("/{id}", itemHandler.Update)
			r.Delete("/{id}", itemHandler.Delete)
		})

		r.Route("/usage-logs", func(r chi.Router) {
			r.Get("/", usageLogHandler.List)
			r.Post("/", usageLogHandler.Create)
			r.Get("/{id}", usageLogHandler.Get)
		})

		r.Post("/add", scanHandler.Add)
		r.Get("/dashboard_stats", itemHandler.DashboardStats)
	})
}
