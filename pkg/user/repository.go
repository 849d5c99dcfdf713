package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role represents the authorization role of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user account in the domain model
type User struct {
	ID               uuid.UUID
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	EmailVerifiedAt  *time.Time
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EmailVerified reports whether the user's email address has been confirmed.
func (u User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

// TwoFactorConfirmation marks that a user passed a two-factor check during
// login. It references the user by id only; it does not own the user record.
type TwoFactorConfirmation struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// CreateUserParams holds the fields required to create a user
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// UpdateUserParams holds optional field updates; nil fields are left unchanged
type UpdateUserParams struct {
	Name             *string
	Email            *string
	PasswordHash     *string
	Role             *Role
	TwoFactorEnabled *bool
	EmailVerifiedAt  *time.Time
}

// Repository defines the storage contract for users and two-factor
// confirmations. Implementations must enforce email uniqueness.
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, params UpdateUserParams) (User, error)

	CreateTwoFactorConfirmation(ctx context.Context, userID uuid.UUID) (TwoFactorConfirmation, error)
	GetTwoFactorConfirmationByUserID(ctx context.Context, userID uuid.UUID) (TwoFactorConfirmation, error)
	DeleteTwoFactorConfirmation(ctx context.Context, id uuid.UUID) error
}
