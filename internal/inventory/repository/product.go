package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
)

const productSelect = `
	SELECT p.id, p.name, p.barcode, p.category_id, c.name AS category_name,
	       p.brand, p.unit_price, p.shelf_life_days, p.description, p.image_url,
	       p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

// ProductRepository handles product persistence. Barcode lookups go
// through the optional barcode cache.
type ProductRepository struct {
	db    *database.DB
	cache *BarcodeCache
}

// NewProductRepository creates a new product repository. cache may be nil.
func NewProductRepository(db *database.DB, cache *BarcodeCache) *ProductRepository {
	return &ProductRepository{db: db, cache: cache}
}

// Create inserts a product
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (
			name, barcode, category_id, brand, unit_price, shelf_life_days, description, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		p.Name, p.Barcode, p.CategoryID, p.Brand, p.UnitPrice, p.ShelfLifeDays, p.Description, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return database.MapError(err, "product")
}

// GetOrCreateByBarcode inserts p unless a product with its barcode
// exists, in which case the stored product is returned untouched.
// A concurrent insert of the same barcode resolves to the winner's row.
func (r *ProductRepository) GetOrCreateByBarcode(ctx context.Context, p *domain.Product) (*domain.Product, bool, error) {
	query := `
		INSERT INTO products (
			name, barcode, category_id, brand, unit_price, shelf_life_days, description, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (barcode) DO NOTHING
		RETURNING id, created_at, updated_at
	`
	created := *p
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		p.Name, p.Barcode, p.CategoryID, p.Brand, p.UnitPrice, p.ShelfLifeDays, p.Description, p.ImageURL,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err == nil {
		return &created, true, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, database.MapError(err, "product")
	}

	existing, err := r.getBy(ctx, "p.barcode", p.Barcode)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getBy(ctx, "p.id", id)
}

// GetByBarcode gets a product by barcode. Outside a transaction the
// barcode cache is consulted first.
func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	inTx := database.InTx(ctx)
	if !inTx {
		if p, ok := r.cache.Get(ctx, barcode); ok {
			return p, nil
		}
	}

	p, err := r.getBy(ctx, "p.barcode", barcode)
	if err != nil {
		return nil, err
	}

	if !inTx {
		r.cache.Set(ctx, p)
	}
	return p, nil
}

func (r *ProductRepository) getBy(ctx context.Context, column, value string) (*domain.Product, error) {
	var p domain.Product
	query := productSelect + ` WHERE ` + column + ` = $1`
	if err := r.db.Conn(ctx).GetContext(ctx, &p, query, value); err != nil {
		return nil, database.MapError(err, "product")
	}
	return &p, nil
}

// List returns a page of products ordered by name
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter, limit, offset int) ([]*domain.Product, int64, error) {
	conn := r.db.Conn(ctx)

	where := []string{"TRUE"}
	args := []interface{}{}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.brand ILIKE $%d OR p.barcode ILIKE $%d)", len(args), len(args), len(args)))
	}
	clause := ` WHERE ` + strings.Join(where, " AND ")

	var total int64
	if err := conn.GetContext(ctx, &total, `SELECT COUNT(*) FROM products p`+clause, args...); err != nil {
		return nil, 0, database.MapError(err, "product")
	}

	products := []*domain.Product{}
	query := productSelect + clause + fmt.Sprintf(` ORDER BY p.name, p.id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	if err := conn.SelectContext(ctx, &products, query, append(args, limit, offset)...); err != nil {
		return nil, 0, database.MapError(err, "product")
	}

	return products, total, nil
}

// Update replaces the editable fields of a product
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products SET
			name = $2, barcode = $3, category_id = $4, brand = $5, unit_price = $6,
			shelf_life_days = $7, description = $8, image_url = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Barcode, p.CategoryID, p.Brand, p.UnitPrice,
		p.ShelfLifeDays, p.Description, p.ImageURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return database.MapError(err, "product")
}

// Delete deletes a product and, through the foreign key, its batches
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "product")
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}

	return nil
}

// Forget drops cached lookups for the given barcodes
func (r *ProductRepository) Forget(ctx context.Context, barcodes ...string) {
	r.cache.Invalidate(ctx, barcodes...)
}

// Remember caches p under its barcode
func (r *ProductRepository) Remember(ctx context.Context, p *domain.Product) {
	r.cache.Set(ctx, p)
}
