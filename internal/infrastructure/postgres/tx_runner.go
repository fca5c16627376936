package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// txAttempts intentos ante conflictos de serialización o deadlock.
const txAttempts = 3

// runInTx ejecuta fn en una transacción (savepoint si q ya es una tx) y hace Commit o Rollback.
// Si PostgreSQL aborta la transacción por serialización o deadlock se reintenta completa; fn
// debe poder repetirse.
func runInTx(ctx context.Context, q Querier, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = runOnce(ctx, q, fn)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("transacción abortada tras %d intentos: %w", txAttempts, err)
}

func runOnce(ctx context.Context, q Querier, fn func(tx pgx.Tx) error) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
