package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"redhope/internal/identity/models"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
	txcontext "redhope/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists accounts in the users and blood_banks tables.
// Inserts join a transaction carried in ctx so bank registration and stock
// provisioning commit together.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const (
	userColumns = `id, name, email, password_hash, phone, blood_group, state, district, address, created_at`
	bankColumns = `id, name, hospital, email, password_hash, phone, state, district, address, created_at`

	userSelect = `id::text, name, email, password_hash, phone, blood_group, state, district, address, created_at`
	bankSelect = `id::text, name, hospital, email, password_hash, phone, state, district, address, created_at`
)

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID.String(), user.Name, user.Email, user.PasswordHash, user.Phone, string(user.BloodGroup),
		user.Location.State, user.Location.District, user.Location.Address, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateBank(ctx context.Context, bank *models.Bank) error {
	_, err := txcontext.QuerierFrom(ctx, s.pool).Exec(ctx, `
		INSERT INTO blood_banks (`+bankColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, bank.ID.String(), bank.Name, bank.Hospital, bank.Email, bank.PasswordHash, bank.Phone,
		bank.Location.State, bank.Location.District, bank.Location.Address, bank.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert bank: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUserByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findUser(ctx, `WHERE id = $1`, userID.String())
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStore) FindBankByID(ctx context.Context, bankID id.BankID) (*models.Bank, error) {
	return s.findBank(ctx, `WHERE id = $1`, bankID.String())
}

func (s *PostgresStore) FindBankByEmail(ctx context.Context, email string) (*models.Bank, error) {
	return s.findBank(ctx, `WHERE email = $1`, email)
}

// UpdateUser writes only the fields set in update. COALESCE keeps the stored
// value for nil fields so the statement is a single round trip.
func (s *PostgresStore) UpdateUser(ctx context.Context, userID id.UserID, update models.UserUpdate) (*models.User, error) {
	var bloodGroup *string
	if update.BloodGroup != nil {
		bg := string(*update.BloodGroup)
		bloodGroup = &bg
	}
	state, district, address := locationArgs(update.Location)
	row := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `
		UPDATE users SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			blood_group = COALESCE($4, blood_group),
			state = COALESCE($5, state),
			district = COALESCE($6, district),
			address = COALESCE($7, address)
		WHERE id = $1
		RETURNING `+userSelect,
		userID.String(), update.Name, update.Phone, bloodGroup, state, district, address)
	return scanUser(row)
}

func (s *PostgresStore) UpdateBank(ctx context.Context, bankID id.BankID, update models.BankUpdate) (*models.Bank, error) {
	state, district, address := locationArgs(update.Location)
	row := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `
		UPDATE blood_banks SET
			name = COALESCE($2, name),
			hospital = COALESCE($3, hospital),
			phone = COALESCE($4, phone),
			state = COALESCE($5, state),
			district = COALESCE($6, district),
			address = COALESCE($7, address)
		WHERE id = $1
		RETURNING `+bankSelect,
		bankID.String(), update.Name, update.Hospital, update.Phone, state, district, address)
	return scanBank(row)
}

func (s *PostgresStore) FindBanks(ctx context.Context, state, district string) ([]models.BankProfile, error) {
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx, `
		SELECT `+bankSelect+` FROM blood_banks
		WHERE lower(state) = lower($1) AND lower(district) = lower($2)
		ORDER BY name, id
	`, state, district)
	if err != nil {
		return nil, fmt.Errorf("find banks: %w", err)
	}
	defer rows.Close()

	out := make([]models.BankProfile, 0)
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b.Profile())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banks: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UserProfiles(ctx context.Context, userIDs []id.UserID) (map[id.UserID]models.UserProfile, error) {
	out := make(map[id.UserID]models.UserProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(userIDs))
	for i, u := range userIDs {
		ids[i] = u.String()
	}
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx,
		`SELECT `+userSelect+` FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("load user profiles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u.Profile()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) BankProfiles(ctx context.Context, bankIDs []id.BankID) (map[id.BankID]models.BankProfile, error) {
	out := make(map[id.BankID]models.BankProfile, len(bankIDs))
	if len(bankIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(bankIDs))
	for i, b := range bankIDs {
		ids[i] = b.String()
	}
	rows, err := txcontext.QuerierFrom(ctx, s.pool).Query(ctx,
		`SELECT `+bankSelect+` FROM blood_banks WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("load bank profiles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		out[b.ID] = b.Profile()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bank profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) findUser(ctx context.Context, where string, arg string) (*models.User, error) {
	row := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `SELECT `+userSelect+` FROM users `+where, arg)
	return scanUser(row)
}

func (s *PostgresStore) findBank(ctx context.Context, where string, arg string) (*models.Bank, error) {
	row := txcontext.QuerierFrom(ctx, s.pool).QueryRow(ctx, `SELECT `+bankSelect+` FROM blood_banks `+where, arg)
	return scanBank(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u          models.User
		rawID      string
		bloodGroup string
	)
	err := row.Scan(&rawID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &bloodGroup,
		&u.Location.State, &u.Location.District, &u.Location.Address, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan user id: %w", err)
	}
	u.ID = userID
	u.BloodGroup = id.BloodGroup(bloodGroup)
	return &u, nil
}

func scanBank(row pgx.Row) (*models.Bank, error) {
	var (
		b     models.Bank
		rawID string
	)
	err := row.Scan(&rawID, &b.Name, &b.Hospital, &b.Email, &b.PasswordHash, &b.Phone,
		&b.Location.State, &b.Location.District, &b.Location.Address, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan bank: %w", err)
	}
	bankID, err := id.ParseBankID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan bank id: %w", err)
	}
	b.ID = bankID
	return &b, nil
}

func locationArgs(loc *models.Location) (state, district, address *string) {
	if loc == nil {
		return nil, nil, nil
	}
	return &loc.State, &loc.District, &loc.Address
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
