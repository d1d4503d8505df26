package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
)

const categoryColumns = `id, name, description, created_at`

// CategoryRepository handles category persistence
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt)
	return database.MapError(err, "category")
}

// GetByID gets a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	if err := r.db.Conn(ctx).GetContext(ctx, &c, query, id); err != nil {
		return nil, database.MapError(err, "category")
	}
	return &c, nil
}

// List returns a page of categories ordered by name
func (r *CategoryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Category, int64, error) {
	conn := r.db.Conn(ctx)

	var total int64
	if err := conn.GetContext(ctx, &total, `SELECT COUNT(*) FROM categories`); err != nil {
		return nil, 0, err
	}

	categories := []*domain.Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name, created_at, id LIMIT $1 OFFSET $2`
	if err := conn.SelectContext(ctx, &categories, query, limit, offset); err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

// Update replaces the name and description of a category
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `
		UPDATE categories SET name = $2, description = $3
		WHERE id = $1
		RETURNING created_at
	`
	err := r.db.Conn(ctx).QueryRowxContext(ctx, query, c.ID, c.Name, c.Description).Scan(&c.CreatedAt)
	return database.MapError(err, "category")
}

// Delete deletes a category. Its products keep existing without one.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return database.MapError(err, "category")
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("category")
	}

	return nil
}

// GetOrCreate returns the category named name, creating it with
// description when none exists. Callers must run it inside a transaction:
// the advisory lock taken here serialises concurrent creators of the same
// name until that transaction ends. When duplicates already exist the
// oldest row is returned.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, name, description string) (*domain.Category, bool, error) {
	conn := r.db.Conn(ctx)

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
		return nil, false, err
	}

	var c domain.Category
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1 ORDER BY created_at, id LIMIT 1`
	err := conn.GetContext(ctx, &c, query, name)
	if err == nil {
		return &c, false, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	c = domain.Category{Name: name, Description: description}
	if err := r.Create(ctx, &c); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}
