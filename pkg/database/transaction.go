package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WithTransaction works like this:
//     Begin a transaction on the pool
//     Deferred rollback fires when:
//         fn returns an error
//         fn panics
//     Run fn with the transaction
//     Commit if fn succeeded

// TxFunc is the unit of work executed inside a transaction.
type TxFunc func(pgx.Tx) error

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner lets services run a unit of work without holding the pool.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn TxFunc) error
}

// WithTransaction wraps fn in a transaction.
// Rolls back on error or panic, commits otherwise.
func WithTransaction(ctx context.Context, db TxBeginner, fn TxFunc) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback is a no-op once Commit has succeeded
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTransactionResult wraps a function that returns a value.
func WithTransactionResult[T any](ctx context.Context, db TxBeginner, fn func(pgx.Tx) (T, error)) (T, error) {
	var result T

	err := WithTransaction(ctx, db, func(tx pgx.Tx) error {
		var fnErr error
		result, fnErr = fn(tx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}

// PoolRunner adapts a TxBeginner to TxRunner.
type PoolRunner struct {
	db TxBeginner
}

func NewPoolRunner(db TxBeginner) *PoolRunner {
	return &PoolRunner{db: db}
}

func (r *PoolRunner) WithTransaction(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, r.db, fn)
}
