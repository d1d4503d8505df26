package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return Wrap(sqlx.NewDb(raw, "postgres"), logger.Nop()), mock
}

func TestWithTx_CommitsAndSharesTransaction(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.WithTx(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		if _, err := db.Conn(ctx).ExecContext(ctx, "INSERT INTO categories (name) VALUES ('Dairy')"); err != nil {
			return err
		}
		// nested scopes join the outer transaction
		return db.WithTx(ctx, func(ctx context.Context) error {
			_, err := db.Conn(ctx).ExecContext(ctx, "INSERT INTO products (barcode) VALUES ('001')")
			return err
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	boom := stderrors.New("batch insert failed")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := db.WithTx(context.Background(), func(ctx context.Context) error {
		if _, err := db.Conn(ctx).ExecContext(ctx, "INSERT INTO categories (name) VALUES ('Dairy')"); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_WithoutTransactionUsesPool(t *testing.T) {
	db, _ := newMock(t)
	ctx := context.Background()

	assert.False(t, InTx(ctx))
	assert.Same(t, db.DB, db.Conn(ctx))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"no rows", sql.ErrNoRows, "NOT_FOUND"},
		{"unique barcode", &pq.Error{Code: "23505", Constraint: "products_barcode_key"}, "CONFLICT"},
		{"foreign key", &pq.Error{Code: "23503"}, "BAD_REQUEST"},
		{"not null", &pq.Error{Code: "23502", Column: "supplier"}, "VALIDATION_ERROR"},
		{"bad uuid", &pq.Error{Code: "22P02"}, "BAD_REQUEST"},
		{"integer overflow", &pq.Error{Code: "22003"}, "VALIDATION_ERROR"},
		{"timestamp overflow", &pq.Error{Code: "22008"}, "VALIDATION_ERROR"},
		{"quantity check", &pq.Error{Code: "23514", Constraint: "inventory_batches_quantity_check"}, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *errors.AppError
			require.True(t, errors.As(MapError(tt.err, "product"), &appErr))
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	assert.NoError(t, MapError(nil, "product"))

	plain := stderrors.New("connection reset")
	assert.Same(t, plain, MapError(plain, "product"))
	assert.Nil(t, MapPQError(&pq.Error{Code: "40001"}))
}

func TestMapPQError_OutOfRangeDetails(t *testing.T) {
	appErr := MapPQError(&pq.Error{Code: "22003", Column: "quantity"})
	require.NotNil(t, appErr)
	assert.Equal(t, map[string]string{"quantity": "value is out of range"}, appErr.Details)
}

func TestMapPQError_BarcodeMessage(t *testing.T) {
	appErr := MapPQError(&pq.Error{Code: "23505", Constraint: "products_barcode_key"})
	require.NotNil(t, appErr)
	assert.Equal(t, "a product with this barcode already exists", appErr.Message)
}
