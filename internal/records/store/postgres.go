package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"redhope/internal/records/models"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
	txcontext "redhope/pkg/platform/tx"
)

const foreignKeyViolation = "23503"

// table holds the fixed identifiers for one record kind.
type table struct {
	name    string
	linkCol string
}

var tables = map[models.Kind]table{
	models.KindDonation: {name: "donations", linkCol: "donation_ids"},
	models.KindRequest:  {name: "requests", linkCol: "request_ids"},
}

// PostgresStore writes records and their bank back-reference in one
// transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func tableFor(kind models.Kind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("unknown record kind %q", kind)
	}
	return t, nil
}

// Create inserts the record and appends its id to the bank. An unknown bank
// or user surfaces as sentinel.ErrNotFound and nothing is written.
func (s *PostgresStore) Create(ctx context.Context, rec *models.Record) error {
	t, err := tableFor(rec.Kind)
	if err != nil {
		return err
	}
	return txcontext.Run(ctx, s.pool, func(ctx context.Context) error {
		q := txcontext.QuerierFrom(ctx, s.pool)

		var insertErr error
		if rec.Kind == models.KindRequest {
			_, insertErr = q.Exec(ctx, `
				INSERT INTO requests (id, user_id, bank_id, blood_group, units, urgent, status, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, rec.ID.String(), rec.UserID.String(), rec.BankID.String(), string(rec.BloodGroup),
				rec.Units, rec.Urgent, rec.Status, rec.CreatedAt)
		} else {
			_, insertErr = q.Exec(ctx, `
				INSERT INTO donations (id, user_id, bank_id, blood_group, units, status, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, rec.ID.String(), rec.UserID.String(), rec.BankID.String(), string(rec.BloodGroup),
				rec.Units, rec.Status, rec.CreatedAt)
		}
		if insertErr != nil {
			if missing := missingReference(insertErr); missing != nil {
				return missing
			}
			return fmt.Errorf("insert %s: %w", rec.Kind, insertErr)
		}

		tag, err := q.Exec(ctx,
			`UPDATE blood_banks SET `+t.linkCol+` = array_append(`+t.linkCol+`, $2::uuid) WHERE id = $1`,
			rec.BankID.String(), rec.ID.String())
		if err != nil {
			return fmt.Errorf("link %s to bank: %w", rec.Kind, err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrUnknownBank
		}
		return nil
	})
}

// UpdateStatus reads the prior status and writes the new one in a single
// statement; the subquery's row lock orders concurrent updates.
func (s *PostgresStore) UpdateStatus(ctx context.Context, kind models.Kind, bankID id.BankID, recordID id.RecordID, status int) (int, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var prior int
	err = txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `
		UPDATE `+t.name+` AS r SET status = $3
		FROM (SELECT id, status FROM `+t.name+` WHERE id = $1 AND bank_id = $2 FOR UPDATE) AS old
		WHERE r.id = old.id
		RETURNING old.status
	`, recordID.String(), bankID.String(), status).Scan(&prior)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("update %s status: %w", kind, err)
	}
	return prior, nil
}

func (s *PostgresStore) ListByBank(ctx context.Context, kind models.Kind, bankID id.BankID) ([]models.Record, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, `
		SELECT `+selectColumns(kind, "r")+`
		FROM blood_banks b
		CROSS JOIN LATERAL unnest(b.`+t.linkCol+`) WITH ORDINALITY AS ref(id, pos)
		JOIN `+t.name+` r ON r.id = ref.id
		WHERE b.id = $1
		ORDER BY ref.pos
	`, bankID.String())
	if err != nil {
		return nil, fmt.Errorf("list %s by bank: %w", kind, err)
	}
	return collect(rows, kind)
}

func (s *PostgresStore) ListByUser(ctx context.Context, kind models.Kind, userID id.UserID) ([]models.Record, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, `
		SELECT `+selectColumns(kind, "r")+`
		FROM `+t.name+` r
		WHERE r.user_id = $1
		ORDER BY r.created_at, r.id
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list %s by user: %w", kind, err)
	}
	return collect(rows, kind)
}

func selectColumns(kind models.Kind, alias string) string {
	urgent := "false"
	if kind == models.KindRequest {
		urgent = alias + ".urgent"
	}
	return alias + ".id::text, " + alias + ".user_id::text, " + alias + ".bank_id::text, " +
		alias + ".blood_group, " + alias + ".units, " + urgent + ", " + alias + ".status, " + alias + ".created_at"
}

func collect(rows pgx.Rows, kind models.Kind) ([]models.Record, error) {
	defer rows.Close()
	out := make([]models.Record, 0)
	for rows.Next() {
		var (
			rec                     models.Record
			rawID, rawUser, rawBank string
			bloodGroup              string
		)
		if err := rows.Scan(&rawID, &rawUser, &rawBank, &bloodGroup, &rec.Units, &rec.Urgent, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		var err error
		if rec.ID, err = id.ParseRecordID(rawID); err != nil {
			return nil, err
		}
		if rec.UserID, err = id.ParseUserID(rawUser); err != nil {
			return nil, err
		}
		if rec.BankID, err = id.ParseBankID(rawBank); err != nil {
			return nil, err
		}
		rec.Kind = kind
		rec.BloodGroup = id.BloodGroup(bloodGroup)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}

// missingReference maps a foreign key violation on insert to the side that
// does not exist; other errors yield nil.
func missingReference(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != foreignKeyViolation {
		return nil
	}
	if strings.HasSuffix(pgErr.ConstraintName, "_user_id_fkey") {
		return models.ErrUnknownUser
	}
	return models.ErrUnknownBank
}
