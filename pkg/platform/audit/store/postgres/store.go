package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	audit "redhope/pkg/platform/audit"
	txcontext "redhope/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and shipped to Kafka by the outbox
// relay worker. When the caller's context carries a transaction the insert
// joins it.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// OutboxEntry is an unpublished outbox row.
type OutboxEntry struct {
	ID           uuid.UUID
	PartitionKey string
	EventType    string
	Payload      []byte
	CreatedAt    time.Time
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	body, err := audit.Marshal(event)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_outbox (id, partition_key, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, query,
		uuid.NewString(),
		event.PartitionKey(),
		event.Action,
		body,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// FetchPending returns up to limit unpublished entries, oldest first. Rows are
// locked with SKIP LOCKED so concurrent relays never ship the same entry.
// Must be called inside txcontext.Run.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, partition_key, event_type, payload, created_at
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.PartitionKey, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given entries as shipped.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, u := range ids {
		raw[i] = u.String()
	}
	_, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx,
		`UPDATE audit_outbox SET published_at = now() WHERE id = ANY($1::uuid[])`, raw)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// Pool exposes the pool so the relay can open its claim transaction.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}
