package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"redhope/internal/inventory/models"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
	txcontext "redhope/pkg/platform/tx"
)

// PostgresStore keeps stock as a JSONB object on the blood_banks row. Each
// adjustment is one conditional UPDATE, so the row lock linearizes
// concurrent writers to the same bank.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Provision merges zero counts under the existing ones; keys already present win.
func (s *PostgresStore) Provision(ctx context.Context, bankID id.BankID) error {
	zeros, err := json.Marshal(toWire(models.ZeroStock()))
	if err != nil {
		return fmt.Errorf("marshal zero stock: %w", err)
	}
	tag, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx,
		`UPDATE blood_banks SET stock = $2::jsonb || stock WHERE id = $1`,
		bankID.String(), string(zeros))
	if err != nil {
		return fmt.Errorf("provision stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Adjust(ctx context.Context, bankID id.BankID, group id.BloodGroup, delta int) (models.Stock, error) {
	q := txcontext.QuerierFrom(ctx, s.pool)
	var raw map[string]int
	err := q.QueryRow(ctx, `
		UPDATE blood_banks
		SET stock = jsonb_set(stock, ARRAY[$2::text], to_jsonb(COALESCE((stock->>$2::text)::bigint, 0) + $3::bigint))
		WHERE id = $1
		  AND COALESCE((stock->>$2::text)::bigint, 0) + $3::bigint BETWEEN 0 AND $4::bigint
		RETURNING stock
	`, bankID.String(), string(group), int64(delta), int64(id.MaxUnits)).Scan(&raw)
	if err == nil {
		return fromWire(raw), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	// No row matched: either the bank is unknown or the guard rejected the delta.
	var current int64
	err = q.QueryRow(ctx,
		`SELECT COALESCE((stock->>$2::text)::bigint, 0) FROM blood_banks WHERE id = $1`,
		bankID.String(), string(group)).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("check bank: %w", err)
	}
	if current+int64(delta) < 0 {
		return nil, sentinel.ErrInsufficient
	}
	return nil, sentinel.ErrOutOfRange
}

func (s *PostgresStore) Read(ctx context.Context, bankID id.BankID) (models.Stock, error) {
	var raw map[string]int
	err := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT stock FROM blood_banks WHERE id = $1`, bankID.String()).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read stock: %w", err)
	}
	return fromWire(raw), nil
}

func toWire(s models.Stock) map[string]int {
	out := make(map[string]int, len(s))
	for g, n := range s {
		out[string(g)] = n
	}
	return out
}

func fromWire(raw map[string]int) models.Stock {
	out := make(models.Stock, len(raw))
	for g, n := range raw {
		out[id.BloodGroup(g)] = n
	}
	return out
}
