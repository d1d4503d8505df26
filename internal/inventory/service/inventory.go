package service

import (
	"context"
	"strings"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/events"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/repository"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/cheftrack/cheftrack-backend/pkg/httputil"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/metrics"
)

// Config holds the domain settings the service applies
type Config struct {
	DefaultCategory  string
	ExpiringSoonDays int
	Location         *time.Location
	// Now defaults to time.Now
	Now func() time.Time
}

// Repositories groups the stores the service works on
type Repositories struct {
	Categories *repository.CategoryRepository
	Products   *repository.ProductRepository
	Batches    *repository.BatchRepository
	UsageLogs  *repository.UsageLogRepository
	Stats      *repository.StatsRepository
}

// InventoryService handles inventory business logic
type InventoryService struct {
	db         *database.DB
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
	batches    *repository.BatchRepository
	usageLogs  *repository.UsageLogRepository
	stats      *repository.StatsRepository
	publisher  *events.InventoryEventPublisher
	metrics    *metrics.InventoryMetrics
	cfg        Config
	logger     *logger.Logger
}

// NewInventoryService creates a new inventory service. publisher and m may be nil.
func NewInventoryService(
	db *database.DB,
	repos Repositories,
	publisher *events.InventoryEventPublisher,
	m *metrics.InventoryMetrics,
	cfg Config,
	log *logger.Logger,
) *InventoryService {
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = "Food & Beverages"
	}
	if cfg.ExpiringSoonDays <= 0 {
		cfg.ExpiringSoonDays = domain.ExpiringSoonThreshold
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &InventoryService{
		db:         db,
		categories: repos.Categories,
		products:   repos.Products,
		batches:    repos.Batches,
		usageLogs:  repos.UsageLogs,
		stats:      repos.Stats,
		publisher:  publisher,
		metrics:    m,
		cfg:        cfg,
		logger:     log,
	}
}

func (s *InventoryService) now() time.Time {
	return s.cfg.Now().In(s.cfg.Location)
}

// validate merges struct tag failures with the parse problems reported
// by Normalize. Tag failures win for the same field.
func validate(v interface{}, parsed map[string]string) error {
	details := httputil.ValidationDetails(v)
	for field, msg := range parsed {
		if details == nil {
			details = map[string]string{}
		}
		if _, ok := details[field]; !ok {
			details[field] = msg
		}
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// Category operations

// ListCategories lists categories by name
func (s *InventoryService) ListCategories(ctx context.Context, limit, offset int) ([]*domain.Category, int64, error) {
	return s.categories.List(ctx, limit, offset)
}

// CreateCategory creates a category
func (s *InventoryService) CreateCategory(ctx context.Context, req *domain.CategoryRequest) (*domain.Category, error) {
	if err := validate(req, nil); err != nil {
		return nil, err
	}

	c := &domain.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategory gets a category
func (s *InventoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// UpdateCategory replaces a category's name and description
func (s *InventoryService) UpdateCategory(ctx context.Context, id string, req *domain.CategoryRequest) (*domain.Category, error) {
	if err := validate(req, nil); err != nil {
		return nil, err
	}

	c := &domain.Category{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory deletes a category. Its products keep existing without one.
func (s *InventoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// Product operations

// ListProducts lists products
func (s *InventoryService) ListProducts(ctx context.Context, filter domain.ProductFilter, limit, offset int) ([]*domain.Product, int64, error) {
	return s.products.List(ctx, filter, limit, offset)
}

// CreateProduct creates a product. A duplicate barcode is a conflict.
func (s *InventoryService) CreateProduct(ctx context.Context, req *domain.ProductRequest) (*domain.Product, error) {
	p, parsed := req.Normalize()
	if err := validate(req, parsed); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, p.ID)
}

// GetProduct gets a product
func (s *InventoryService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// SearchByBarcode looks a product up by its barcode
func (s *InventoryService) SearchByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, errors.BadRequest("barcode parameter is required")
	}
	return s.products.GetByBarcode(ctx, barcode)
}

// UpdateProduct replaces a product's fields and drops cached lookups for
// both the old and the new barcode
func (s *InventoryService) UpdateProduct(ctx context.Context, id string, req *domain.ProductRequest) (*domain.Product, error) {
	p, parsed := req.Normalize()
	if err := validate(req, parsed); err != nil {
		return nil, err
	}

	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.ID = id
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.products.Forget(ctx, existing.Barcode, p.Barcode)

	return s.products.GetByID(ctx, id)
}

// DeleteProduct deletes a product together with its batches
func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.products.Forget(ctx, existing.Barcode)
	return nil
}

// Batch operations

// ListBatches lists batches as read models
func (s *InventoryService) ListBatches(ctx context.Context, filter domain.BatchFilter, limit, offset int) ([]*domain.BatchView, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, errors.Validation(map[string]string{
			"status": "must be one of: expired expiring_soon good",
		})
	}

	now := s.now()
	rows, total, err := s.batches.List(ctx, filter, now, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return views(rows, now), total, nil
}

// CreateBatch records a batch directly. The acting user, when known, is
// stored as added_by.
func (s *InventoryService) CreateBatch(ctx context.Context, req *domain.BatchRequest) (*domain.BatchView, error) {
	b, parsed := req.Normalize(s.cfg.Location)
	if err := validate(req, parsed); err != nil {
		return nil, err
	}

	if a := actor.FromContext(ctx); a != nil {
		b.AddedBy = &a.ID
	}
	if err := s.batches.Create(ctx, b); err != nil {
		return nil, err
	}
	return s.GetBatch(ctx, b.ID)
}

// GetBatch gets a batch as a read model
func (s *InventoryService) GetBatch(ctx context.Context, id string) (*domain.BatchView, error) {
	b, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.View(s.now()), nil
}

// UpdateBatch replaces a batch's fields. added_by is kept.
func (s *InventoryService) UpdateBatch(ctx context.Context, id string, req *domain.BatchRequest) (*domain.BatchView, error) {
	b, parsed := req.Normalize(s.cfg.Location)
	if err := validate(req, parsed); err != nil {
		return nil, err
	}

	b.ID = id
	if err := s.batches.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.GetBatch(ctx, id)
}

// DeleteBatch deletes a batch and its usage logs
func (s *InventoryService) DeleteBatch(ctx context.Context, id string) error {
	return s.batches.Delete(ctx, id)
}

func views(rows []*domain.BatchWithProduct, now time.Time) []*domain.BatchView {
	out := make([]*domain.BatchView, 0, len(rows))
	for _, b := range rows {
		out = append(out, b.View(now))
	}
	return out
}
