// Package worker relays audit events from the Postgres outbox to the broker.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"redhope/pkg/platform/audit/store/postgres"
)

// Outbox is the claim side of the outbox table.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]postgres.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Sink ships one encoded event. The Kafka producer implements it.
type Sink interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// TxRunner runs fn in a transaction carried by its context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Worker polls the outbox and forwards pending entries in creation order.
// Entries are marked published only after the sink acknowledges them, so a
// crash mid-batch re-sends rather than loses events.
type Worker struct {
	outbox   Outbox
	sink     Sink
	runInTx  TxRunner
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batch = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func NewWorker(outbox Outbox, sink Sink, runInTx TxRunner, opts ...Option) *Worker {
	w := &Worker{
		outbox:   outbox,
		sink:     sink,
		runInTx:  runInTx,
		logger:   slog.Default(),
		interval: time.Second,
		batch:    100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run relays until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.WarnContext(ctx, "audit outbox relay failed", "error", err, "relayed", n)
			}
		}
	}
}

// RunOnce relays a single batch and reports how many entries were shipped.
// A sink failure stops the batch; entries shipped before it are still marked.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	var (
		shipped []uuid.UUID
		sendErr error
	)
	err := w.runInTx(ctx, func(ctx context.Context) error {
		shipped, sendErr = nil, nil
		entries, err := w.outbox.FetchPending(ctx, w.batch)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if sendErr = w.sink.Publish(ctx, e.PartitionKey, e.Payload); sendErr != nil {
				break
			}
			shipped = append(shipped, e.ID)
		}
		return w.outbox.MarkPublished(ctx, shipped)
	})
	if err != nil {
		return 0, err
	}
	return len(shipped), sendErr
}
