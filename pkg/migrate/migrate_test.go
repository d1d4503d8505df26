package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, Validate(Embedded()))
}

func TestValidate_RejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "bad filename",
			fsys: fstest.MapFS{"init.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")}},
			want: "invalid migration filename",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"20250101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
				"20250101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			},
			want: "duplicate migration version",
		},
		{
			name: "missing down",
			fsys: fstest.MapFS{"20250101000000_a.sql": {Data: []byte("-- +goose Up\n")}},
			want: "missing \"-- +goose Down\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.fsys)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_catalog.sql")

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS products",
		"CONSTRAINT products_barcode_key UNIQUE (barcode)",
		"unit_price NUMERIC(10,2)",
		"shelf_life_days INTEGER NOT NULL DEFAULT 7",
		"REFERENCES categories(id) ON DELETE SET NULL",
		"DROP TABLE IF EXISTS products",
	} {
		assert.Contains(t, content, sub)
	}

	// category names are an upsert key, not a unique constraint
	assert.NotContains(t, content, "name VARCHAR(100) NOT NULL UNIQUE")
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_inventory_batches.sql")

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS inventory_batches",
		"product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE",
		"is_expired BOOLEAN NOT NULL DEFAULT FALSE",
		"added_by UUID REFERENCES users(id) ON DELETE SET NULL",
		"CREATE TABLE IF NOT EXISTS usage_logs",
		"inventory_id UUID NOT NULL REFERENCES inventory_batches(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS inventory_batches",
	} {
		assert.Contains(t, content, sub)
	}

	assert.NotContains(t, content, "CHECK (quantity")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 7, 1, 12, 30, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Supplier Index!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20250701123000_add_supplier_index.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "-- +goose Up"))
	require.NoError(t, Validate(os.DirFS(dir)))

	_, err = CreateSQLMigration(dir, "Add Supplier Index!", now)
	assert.ErrorContains(t, err, "already exists")

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.ErrorContains(t, err, "empty sanitized filename")
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", pattern)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}
