package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	txcontext "redhope/pkg/platform/tx"
)

// txRunner binds tx.Run to pool. The returned func satisfies both the
// identity service's and the outbox worker's TxRunner.
func txRunner(pool *pgxpool.Pool) func(ctx context.Context, fn func(ctx context.Context) error) error {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return txcontext.Run(ctx, pool, fn)
	}
}
