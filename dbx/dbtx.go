// Package dbx holds the small database/sql plumbing shared by the
// repositories: a DBTX interface satisfied by both *sql.DB and *sql.Tx,
// and a WithTx helper that commits or rolls back around a callback.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql the repositories use. Both *sql.DB
// and *sql.Tx satisfy it, so a repository can be bound to either.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with the transactional handle and
// commits on success. Any error (or panic) from fn rolls the whole
// transaction back; panics are rethrown after the rollback.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
