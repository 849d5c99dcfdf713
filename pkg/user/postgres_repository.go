package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository backed by PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL user repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateUser creates a user, enforcing email uniqueness
func (r *PostgresRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, password_hash, role, email_verified_at,
		          two_factor_enabled, created_at, updated_at
	`

	role := params.Role
	if role == "" {
		role = RoleUser
	}

	var u User
	err := r.db.QueryRow(ctx, query,
		uuid.New(), params.Name, normalizeEmail(params.Email), params.PasswordHash, role,
	).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.EmailVerifiedAt, &u.TwoFactorEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByID returns a user by id
func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `
		SELECT id, name, email, password_hash, role, email_verified_at,
		       two_factor_enabled, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// GetUserByEmail returns a user by email
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query := `
		SELECT id, name, email, password_hash, role, email_verified_at,
		       two_factor_enabled, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRow(ctx, query, normalizeEmail(email)))
}

func (r *PostgresRepository) scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.EmailVerifiedAt, &u.TwoFactorEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UpdateUser applies the non-nil fields of params to the user
func (r *PostgresRepository) UpdateUser(ctx context.Context, id uuid.UUID, params UpdateUserParams) (User, error) {
	var email *string
	if params.Email != nil {
		e := normalizeEmail(*params.Email)
		email = &e
	}

	query := `
		UPDATE users
		SET name               = COALESCE($2, name),
		    email              = COALESCE($3, email),
		    password_hash      = COALESCE($4, password_hash),
		    role               = COALESCE($5, role),
		    two_factor_enabled = COALESCE($6, two_factor_enabled),
		    email_verified_at  = COALESCE($7, email_verified_at),
		    updated_at         = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING id, name, email, password_hash, role, email_verified_at,
		          two_factor_enabled, created_at, updated_at
	`

	var u User
	err := r.db.QueryRow(ctx, query,
		id, params.Name, email, params.PasswordHash, params.Role,
		params.TwoFactorEnabled, params.EmailVerifiedAt,
	).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.EmailVerifiedAt, &u.TwoFactorEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// CreateTwoFactorConfirmation creates a confirmation marker for the user
func (r *PostgresRepository) CreateTwoFactorConfirmation(ctx context.Context, userID uuid.UUID) (TwoFactorConfirmation, error) {
	query := `
		INSERT INTO two_factor_confirmations (id, user_id)
		VALUES ($1, $2)
		RETURNING id, user_id, created_at
	`

	var c TwoFactorConfirmation
	err := r.db.QueryRow(ctx, query, uuid.New(), userID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		return TwoFactorConfirmation{}, err
	}
	return c, nil
}

// GetTwoFactorConfirmationByUserID returns the confirmation for the user, if any
func (r *PostgresRepository) GetTwoFactorConfirmationByUserID(ctx context.Context, userID uuid.UUID) (TwoFactorConfirmation, error) {
	query := `
		SELECT id, user_id, created_at
		FROM two_factor_confirmations
		WHERE user_id = $1
	`

	var c TwoFactorConfirmation
	err := r.db.QueryRow(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TwoFactorConfirmation{}, ErrConfirmationNotFound
		}
		return TwoFactorConfirmation{}, err
	}
	return c, nil
}

// DeleteTwoFactorConfirmation removes a confirmation by id
func (r *PostgresRepository) DeleteTwoFactorConfirmation(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM two_factor_confirmations WHERE id = $1`, id)
	return err
}
