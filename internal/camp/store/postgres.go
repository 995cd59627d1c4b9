package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"redhope/internal/camp/models"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
	txcontext "redhope/pkg/platform/tx"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const campSelect = `SELECT id::text, bank_id::text, name, state, district, address, date, donors, created_at FROM camps`

// PostgresStore keeps the roster as a JSONB array on the camp row. Roster
// changes are single conditional UPDATEs, so the row lock orders them.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// donorRow is the stored shape of a roster entry.
type donorRow struct {
	UserID string `json:"user_id"`
	Status int    `json:"status"`
	Units  int    `json:"units"`
}

func (s *PostgresStore) Create(ctx context.Context, camp *models.Camp) error {
	donors, err := encodeDonors(camp.Donors)
	if err != nil {
		return err
	}
	_, err = txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO camps (id, bank_id, name, state, district, address, date, donors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
	`, camp.ID.String(), camp.BankID.String(), camp.Name,
		camp.Location.State, camp.Location.District, camp.Location.Address,
		camp.Date, donors, camp.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return sentinel.ErrAlreadyUsed
			case foreignKeyViolation:
				return sentinel.ErrNotFound
			}
		}
		return fmt.Errorf("insert camp: %w", err)
	}
	return nil
}

// Enroll appends the user unless the roster already contains them. A
// concurrent enroll that commits first makes the containment check fail on
// re-evaluation, so the user is appended once.
func (s *PostgresStore) Enroll(ctx context.Context, campID id.CampID, userID id.UserID) (bool, error) {
	q := txcontext.QuerierFrom(ctx, s.pool)
	tag, err := q.Exec(ctx, `
		UPDATE camps
		SET donors = donors || jsonb_build_array(jsonb_build_object('user_id', $2::text, 'status', 0, 'units', 0))
		WHERE id = $1
		  AND NOT donors @> jsonb_build_array(jsonb_build_object('user_id', $2::text))
	`, campID.String(), userID.String())
	if err != nil {
		return false, fmt.Errorf("enroll donor: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM camps WHERE id = $1)`, campID.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check camp: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

// Fulfill rewrites the matching enrolled entry in place. The WHERE clause
// only matches while that user is still enrolled, so a second fulfill
// changes nothing.
func (s *PostgresStore) Fulfill(ctx context.Context, bankID id.BankID, campID id.CampID, userID id.UserID, units int) (bool, error) {
	q := txcontext.QuerierFrom(ctx, s.pool)
	tag, err := q.Exec(ctx, `
		UPDATE camps
		SET donors = (
			SELECT jsonb_agg(
				CASE WHEN d->>'user_id' = $3::text AND (d->>'status')::int = 0
					THEN d || jsonb_build_object('status', 1, 'units', $4::int)
					ELSE d
				END ORDER BY e.pos)
			FROM jsonb_array_elements(donors) WITH ORDINALITY AS e(d, pos)
		)
		WHERE id = $1
		  AND bank_id = $2
		  AND donors @> jsonb_build_array(jsonb_build_object('user_id', $3::text, 'status', 0))
	`, campID.String(), bankID.String(), userID.String(), units)
	if err != nil {
		return false, fmt.Errorf("fulfill donor: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var owner string
	err = q.QueryRow(ctx, `SELECT bank_id::text FROM camps WHERE id = $1`, campID.String()).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("check camp owner: %w", err)
	}
	if owner != bankID.String() {
		return false, sentinel.ErrForbidden
	}
	return false, nil
}

func (s *PostgresStore) ListByLocation(ctx context.Context, state, district string) ([]models.Camp, error) {
	return s.query(ctx, campSelect+`
		WHERE lower(state) = lower($1) AND lower(district) = lower($2)
		ORDER BY date, id
	`, state, district)
}

func (s *PostgresStore) ListByLocationBetween(ctx context.Context, state, district string, from, to time.Time) ([]models.Camp, error) {
	return s.query(ctx, campSelect+`
		WHERE lower(state) = lower($1) AND lower(district) = lower($2)
		  AND date >= $3 AND date < $4
		ORDER BY date, id
	`, state, district, from, to)
}

func (s *PostgresStore) ListByBank(ctx context.Context, bankID id.BankID) ([]models.Camp, error) {
	return s.query(ctx, campSelect+` WHERE bank_id = $1 ORDER BY date, id`, bankID.String())
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]models.Camp, error) {
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query camps: %w", err)
	}
	defer rows.Close()

	out := make([]models.Camp, 0)
	for rows.Next() {
		camp, err := scanCamp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *camp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate camps: %w", err)
	}
	return out, nil
}

func scanCamp(row pgx.Row) (*models.Camp, error) {
	var (
		camp           models.Camp
		rawID, rawBank string
		rawDonors      []byte
	)
	err := row.Scan(&rawID, &rawBank, &camp.Name,
		&camp.Location.State, &camp.Location.District, &camp.Location.Address,
		&camp.Date, &rawDonors, &camp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan camp: %w", err)
	}
	if camp.ID, err = id.ParseCampID(rawID); err != nil {
		return nil, err
	}
	if camp.BankID, err = id.ParseBankID(rawBank); err != nil {
		return nil, err
	}
	if camp.Donors, err = decodeDonors(rawDonors); err != nil {
		return nil, err
	}
	return &camp, nil
}

func encodeDonors(donors []models.Donor) ([]byte, error) {
	rows := make([]donorRow, 0, len(donors))
	for _, d := range donors {
		rows = append(rows, donorRow{UserID: d.UserID.String(), Status: d.Status, Units: d.Units})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode donors: %w", err)
	}
	return b, nil
}

func decodeDonors(raw []byte) ([]models.Donor, error) {
	var rows []donorRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode donors: %w", err)
	}
	out := make([]models.Donor, 0, len(rows))
	for _, r := range rows {
		userID, err := id.ParseUserID(r.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Donor{UserID: userID, Status: r.Status, Units: r.Units})
	}
	return out, nil
}
