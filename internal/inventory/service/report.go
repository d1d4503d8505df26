package service

import (
	"context"
	"fmt"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
)

// MaxExpiringSoonDays bounds the expiring-soon window
const MaxExpiringSoonDays = 3650

// ExpiringSoon lists unflagged batches in stock whose expiry is within
// days from now, soonest first. Batches already past their date are
// included until someone flags them expired.
func (s *InventoryService) ExpiringSoon(ctx context.Context, days int) ([]*domain.BatchView, error) {
	if days < 0 {
		return nil, errors.Validation(map[string]string{"days": "must be a non-negative integer"})
	}
	if days > MaxExpiringSoonDays {
		return nil, errors.Validation(map[string]string{"days": fmt.Sprintf("must be at most %d", MaxExpiringSoonDays)})
	}

	now := s.now()
	rows, err := s.batches.ExpiringBefore(ctx, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	return views(rows, now), nil
}

// DefaultExpiringSoonDays is the window used when a caller gives none
func (s *InventoryService) DefaultExpiringSoonDays() int {
	return s.cfg.ExpiringSoonDays
}

// DashboardStats summarises the inventory at the current time
func (s *InventoryService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	now := s.now()
	stats, err := s.stats.Dashboard(ctx, now, now.AddDate(0, 0, domain.ExpiringSoonThreshold))
	if err != nil {
		return nil, err
	}
	s.metrics.SetExpiringSoon(int(stats.ExpiringSoon))
	return stats, nil
}
