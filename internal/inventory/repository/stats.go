package repository

import (
	"context"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
)

// StatsRepository computes dashboard aggregates
type StatsRepository struct {
	db *database.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Dashboard counts batches in stock, batches expiring by soonUntil,
// batches whose expiry date is before now, and categories. The expired
// count ignores both the is_expired flag and the quantity.
func (r *StatsRepository) Dashboard(ctx context.Context, now, soonUntil time.Time) (*domain.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE b.quantity > 0) AS total_items,
			COUNT(*) FILTER (WHERE b.expiry_date <= $2 AND b.is_expired = FALSE AND b.quantity > 0) AS expiring_soon,
			COUNT(*) FILTER (WHERE b.expiry_date < $1) AS expired_items,
			(SELECT COUNT(*) FROM categories) AS total_categories
		FROM inventory_batches b
	`
	var stats domain.DashboardStats
	if err := r.db.Conn(ctx).GetContext(ctx, &stats, query, now, soonUntil); err != nil {
		return nil, err
	}
	return &stats, nil
}
