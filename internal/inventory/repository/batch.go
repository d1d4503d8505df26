package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
)

const batchSelect = `
	SELECT b.id, b.product_id, b.quantity, b.purchase_date, b.expiry_date, b.batch_number,
	       b.supplier, b.cost_price, b.is_expired, b.added_by, b.created_at, b.updated_at,
	       p.name AS product_name, p.barcode AS product_barcode
	FROM inventory_batches b
	JOIN products p ON p.id = b.product_id
`

// BatchRepository handles inventory batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a batch
func (r *BatchRepository) Create(ctx context.Context, b *domain.Batch) error {
	query := `
		INSERT INTO inventory_batches (
			product_id, quantity, purchase_date, expiry_date, batch_number,
			supplier, cost_price, is_expired, added_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		b.ProductID, b.Quantity, b.PurchaseDate, b.ExpiryDate, b.BatchNumber,
		b.Supplier, b.CostPrice, b.IsExpired, b.AddedBy,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return database.MapError(err, "inventory item")
}

// GetByID gets a batch with its product by ID
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.BatchWithProduct, error) {
	var b domain.BatchWithProduct
	if err := r.db.Conn(ctx).GetContext(ctx, &b, batchSelect+` WHERE b.id = $1`, id); err != nil {
		return nil, database.MapError(err, "inventory item")
	}
	return &b, nil
}

// List returns batches matching filter, newest first. A limit of zero
// or less returns every match. Status filtering compares calendar days
// in loc, the same way the status is computed on read.
func (r *BatchRepository) List(ctx context.Context, filter domain.BatchFilter, now time.Time, limit, offset int) ([]*domain.BatchWithProduct, int64, error) {
	conn := r.db.Conn(ctx)

	where := []string{"TRUE"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ProductID != "" {
		where = append(where, "b.product_id = "+arg(filter.ProductID))
	}
	if filter.Status != "" {
		days := fmt.Sprintf("((b.expiry_date AT TIME ZONE %s)::date - %s::date)",
			arg(now.Location().String()), arg(now.Format("2006-01-02")))
		soon := fmt.Sprintf("%s BETWEEN 1 AND %d", days, domain.ExpiringSoonThreshold)

		switch filter.Status {
		case domain.StatusExpired:
			where = append(where, "b.is_expired")
		case domain.StatusExpiringSoon:
			where = append(where, "NOT b.is_expired", soon)
		case domain.StatusGood:
			where = append(where, "NOT b.is_expired", "NOT ("+soon+")")
		}
	}
	clause := ` WHERE ` + strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM inventory_batches b` + clause
	if err := conn.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, database.MapError(err, "inventory item")
	}

	query := batchSelect + clause + ` ORDER BY b.created_at DESC, b.id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %s OFFSET %s`, arg(limit), arg(offset))
	}

	batches := []*domain.BatchWithProduct{}
	if err := conn.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, 0, database.MapError(err, "inventory item")
	}

	return batches, total, nil
}

// ExpiringBefore returns unflagged batches with stock whose expiry is at
// or before until, soonest first. Batches already past their date are
// included unless they were flagged expired.
func (r *BatchRepository) ExpiringBefore(ctx context.Context, until time.Time) ([]*domain.BatchWithProduct, error) {
	query := batchSelect + `
		WHERE b.expiry_date <= $1 AND b.is_expired = FALSE AND b.quantity > 0
		ORDER BY b.expiry_date, b.id
	`
	batches := []*domain.BatchWithProduct{}
	if err := r.db.Conn(ctx).SelectContext(ctx, &batches, query, until); err != nil {
		return nil, err
	}
	return batches, nil
}

// Update replaces the editable fields of a batch
func (r *BatchRepository) Update(ctx context.Context, b *domain.Batch) error {
	query := `
		UPDATE inventory_batches SET
			product_id = $2, quantity = $3, purchase_date = $4, expiry_date = $5,
			batch_number = $6, supplier = $7, cost_price = $8, is_expired = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING added_by, created_at, updated_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		b.ID, b.ProductID, b.Quantity, b.PurchaseDate, b.ExpiryDate,
		b.BatchNumber, b.Supplier, b.CostPrice, b.IsExpired,
	).Scan(&b.AddedBy, &b.CreatedAt, &b.UpdatedAt)
	return database.MapError(err, "inventory item")
}

// Delete deletes a batch and its usage logs
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM inventory_batches WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "inventory item")
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("inventory item")
	}

	return nil
}
