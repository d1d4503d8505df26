package service

import (
	"context"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
)

// RecordUsage logs consumption from a batch by the acting user. The
// batch quantity is left as it is.
func (s *InventoryService) RecordUsage(ctx context.Context, req *domain.UsageLogRequest) (*domain.UsageLog, error) {
	if err := validate(req, nil); err != nil {
		return nil, err
	}

	l := &domain.UsageLog{
		InventoryID:  req.InventoryID,
		QuantityUsed: *req.QuantityUsed,
		Notes:        req.Notes,
	}
	if a := actor.FromContext(ctx); a != nil {
		l.UsedBy = &a.ID
	}

	if err := s.usageLogs.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// GetUsageLog gets a usage log
func (s *InventoryService) GetUsageLog(ctx context.Context, id string) (*domain.UsageLog, error) {
	return s.usageLogs.GetByID(ctx, id)
}

// ListUsageLogs lists usage logs, optionally for one batch
func (s *InventoryService) ListUsageLogs(ctx context.Context, inventoryID string, limit, offset int) ([]*domain.UsageLog, int64, error) {
	return s.usageLogs.List(ctx, inventoryID, limit, offset)
}
