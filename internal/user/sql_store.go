package user

import (
	"context"
	"database/sql"
	"errors"

	"idgate/internal/db"

	"github.com/google/uuid"
)

// SQLStore is the postgres-backed account store.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(db *db.DB) *SQLStore {
	return &SQLStore{db: db}
}

const accountColumns = `
	id, email, email_verified, first_name, last_name,
	role_id, provider, COALESCE(external_identifier, ''), auth_data
`

func (s *SQLStore) FindByExternalIdentifier(
	ctx context.Context,
	identifier string,
) (*Account, error) {

	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE LOWER(external_identifier) = LOWER($1)
	`, identifier)

	return scanAccount(row)
}

func (s *SQLStore) FindByID(ctx context.Context, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE id = $1
	`, id)

	return scanAccount(row)
}

func (s *SQLStore) Create(ctx context.Context, acc NewAccount) (string, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (
			email, email_verified, first_name, last_name,
			role_id, provider, external_identifier, auth_data
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		acc.Email,
		acc.EmailVerified,
		acc.FirstName,
		acc.LastName,
		acc.RoleID,
		acc.Provider,
		acc.ExternalIdentifier,
		acc.AuthData,
	).Scan(&id)

	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (s *SQLStore) UpdateAuthData(ctx context.Context, id string, authData string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET auth_data = $2, updated_at = NOW()
		WHERE id = $1
	`, id, authData)
	return err
}

func scanAccount(row *sql.Row) (*Account, error) {
	var (
		id  uuid.UUID
		acc Account
	)

	err := row.Scan(
		&id,
		&acc.Email,
		&acc.EmailVerified,
		&acc.FirstName,
		&acc.LastName,
		&acc.RoleID,
		&acc.Provider,
		&acc.ExternalIdentifier,
		&acc.AuthData,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	acc.ID = id.String()
	return &acc, nil
}
