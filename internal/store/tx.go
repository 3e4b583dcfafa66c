package store

import (
	"context"
	"fmt"
)

// WithTx runs fn inside a transaction. Any error from fn, or a panic, rolls the
// transaction back; the connection is returned to the pool on every path.
func WithTx(ctx context.Context, db DB, fn func(tx Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op. It must still run when
	// ctx is already canceled.
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
