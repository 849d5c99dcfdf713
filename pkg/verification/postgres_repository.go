package verification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository backed by PostgreSQL.
// The verification_tokens table carries a UNIQUE (purpose, subject_key)
// constraint so the upsert is a single atomic statement.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL token repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertToken atomically replaces any token for the same (purpose, subject key)
func (r *PostgresRepository) UpsertToken(ctx context.Context, token Token) error {
	query := `
		INSERT INTO verification_tokens (id, purpose, subject_key, email, new_email, token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (purpose, subject_key) DO UPDATE
		SET id         = EXCLUDED.id,
		    email      = EXCLUDED.email,
		    new_email  = EXCLUDED.new_email,
		    token      = EXCLUDED.token,
		    expires_at = EXCLUDED.expires_at
	`

	var newEmail *string
	if token.Subject.NewEmail != "" {
		newEmail = &token.Subject.NewEmail
	}

	_, err := r.db.Exec(ctx, query,
		token.ID, token.Purpose, token.Subject.Key(),
		token.Subject.Email, newEmail, token.Value, token.ExpiresAt,
	)
	return err
}

// GetTokenByValue returns the token with the given value, if any
func (r *PostgresRepository) GetTokenByValue(ctx context.Context, purpose Purpose, value string) (Token, error) {
	query := `
		SELECT id, purpose, email, new_email, token, expires_at
		FROM verification_tokens
		WHERE purpose = $1 AND token = $2
	`

	var t Token
	var newEmail *string
	err := r.db.QueryRow(ctx, query, purpose, value).Scan(
		&t.ID, &t.Purpose, &t.Subject.Email, &newEmail, &t.Value, &t.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Token{}, ErrTokenNotFound
		}
		return Token{}, err
	}
	if newEmail != nil {
		t.Subject.NewEmail = *newEmail
	}
	return t, nil
}

// DeleteToken removes a token by id
func (r *PostgresRepository) DeleteToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM verification_tokens WHERE id = $1`, id)
	return err
}
