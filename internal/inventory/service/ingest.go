package service

import (
	"context"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/cheftrack/cheftrack-backend/pkg/metrics"
)

// AutoCategoryDescription is stored on categories created by a scan
func AutoCategoryDescription(name string) string {
	return "Auto-created category: " + name
}

// Ingest turns a barcode scan into a batch. The category is found or
// created by name and the product by barcode, then the batch is stored
// with the acting user as added_by. All three writes share one
// transaction. An existing product is used as stored; the scan does not
// update it.
func (s *InventoryService) Ingest(ctx context.Context, req *domain.IngestRequest) (*domain.BatchView, error) {
	a := actor.FromContext(ctx)
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}

	in, parsed := req.Normalize(s.cfg.DefaultCategory, s.cfg.Location)
	if err := validate(req, parsed); err != nil {
		s.metrics.IncIngestion(metrics.OutcomeInvalid)
		return nil, err
	}

	var (
		category       *domain.Category
		product        *domain.Product
		productCreated bool
	)
	batch := in.Batch
	batch.AddedBy = &a.ID

	err := s.db.WithTx(ctx, func(ctx context.Context) error {
		var err error
		category, _, err = s.categories.GetOrCreate(ctx, in.CategoryName, AutoCategoryDescription(in.CategoryName))
		if err != nil {
			return err
		}

		candidate := in.Product
		candidate.CategoryID = &category.ID
		product, productCreated, err = s.products.GetOrCreateByBarcode(ctx, &candidate)
		if err != nil {
			return err
		}
		if productCreated {
			product.CategoryName = &category.Name
		}

		batch.ProductID = product.ID
		return s.batches.Create(ctx, &batch)
	})
	if err != nil {
		s.metrics.IncIngestion(metrics.OutcomeFailed)
		s.logger.Error().Err(err).
			Str("barcode", in.Product.Barcode).
			Str("user_id", a.ID).
			Msg("ingestion failed")
		return nil, err
	}

	s.products.Remember(ctx, product)

	outcome := metrics.OutcomeExisting
	if productCreated {
		outcome = metrics.OutcomeCreated
	}
	s.metrics.IncIngestion(outcome)

	view := domain.NewBatchView(&batch, product, s.now())
	s.publisher.PublishBatchCreated(ctx, view, category.Name, productCreated)

	s.logger.Info().
		Str("batch_id", view.ID).
		Str("barcode", product.Barcode).
		Bool("product_created", productCreated).
		Str("user_id", a.ID).
		Msg("product added to inventory")

	return view, nil
}
