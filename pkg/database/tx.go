package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// WithTx runs fn inside a single transaction. The transaction travels in
// the context handed to fn, so every repository call made with that
// context joins it through Conn. A nested WithTx reuses the outer
// transaction instead of opening a second one.
//
//	err := db.WithTx(ctx, func(ctx context.Context) error {
//	    cat, err := categories.GetOrCreate(ctx, name, desc)
//	    ...
//	    return batches.Create(ctx, batch)
//	})
func (db *DB) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if db.getTx(ctx) != nil {
		return fn(ctx)
	}

	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction carried by ctx, or the pool when there is none
func (db *DB) Conn(ctx context.Context) Querier {
	if tx := db.getTx(ctx); tx != nil {
		return tx
	}
	return db.DB
}

// InTx reports whether ctx carries a transaction
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return ok
}

// getTx extracts transaction from context if present
func (db *DB) getTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}
