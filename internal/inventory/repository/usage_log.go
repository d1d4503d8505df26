package repository

import (
	"context"
	"fmt"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
)

const usageLogSelect = `
	SELECT u.id, u.inventory_id, u.quantity_used, u.used_by, u.notes, u.created_at,
	       p.name AS product_name
	FROM usage_logs u
	JOIN inventory_batches b ON b.id = u.inventory_id
	JOIN products p ON p.id = b.product_id
`

// UsageLogRepository handles usage log persistence. Logs are append-only.
type UsageLogRepository struct {
	db *database.DB
}

// NewUsageLogRepository creates a new usage log repository
func NewUsageLogRepository(db *database.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

// Create inserts a usage log and fills in its product name
func (r *UsageLogRepository) Create(ctx context.Context, l *domain.UsageLog) error {
	query := `
		WITH inserted AS (
			INSERT INTO usage_logs (inventory_id, quantity_used, used_by, notes)
			VALUES ($1, $2, $3, $4)
			RETURNING id, inventory_id, created_at
		)
		SELECT i.id, i.created_at, p.name
		FROM inserted i
		JOIN inventory_batches b ON b.id = i.inventory_id
		JOIN products p ON p.id = b.product_id
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		l.InventoryID, l.QuantityUsed, l.UsedBy, l.Notes,
	).Scan(&l.ID, &l.CreatedAt, &l.ProductName)
	return database.MapError(err, "usage log")
}

// GetByID gets a usage log by ID
func (r *UsageLogRepository) GetByID(ctx context.Context, id string) (*domain.UsageLog, error) {
	var l domain.UsageLog
	if err := r.db.Conn(ctx).GetContext(ctx, &l, usageLogSelect+` WHERE u.id = $1`, id); err != nil {
		return nil, database.MapError(err, "usage log")
	}
	return &l, nil
}

// List returns a page of usage logs, newest first, optionally for one batch
func (r *UsageLogRepository) List(ctx context.Context, inventoryID string, limit, offset int) ([]*domain.UsageLog, int64, error) {
	conn := r.db.Conn(ctx)

	clause := ""
	args := []interface{}{}
	if inventoryID != "" {
		args = append(args, inventoryID)
		clause = ` WHERE u.inventory_id = $1`
	}

	var total int64
	if err := conn.GetContext(ctx, &total, `SELECT COUNT(*) FROM usage_logs u`+clause, args...); err != nil {
		return nil, 0, database.MapError(err, "usage log")
	}

	logs := []*domain.UsageLog{}
	query := usageLogSelect + clause + fmt.Sprintf(` ORDER BY u.created_at DESC, u.id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	if err := conn.SelectContext(ctx, &logs, query, append(args, limit, offset)...); err != nil {
		return nil, 0, database.MapError(err, "usage log")
	}

	return logs, total, nil
}
