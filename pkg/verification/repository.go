package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Purpose identifies what a verification token is used for
type Purpose string

const (
	PurposeEmailVerify   Purpose = "email_verify"
	PurposePasswordReset Purpose = "password_reset"
	PurposeEmailChange   Purpose = "email_change"
	PurposeTwoFactor     Purpose = "two_factor"
)

// Subject is the key a token is scoped to: an email address, or an
// old/new email pair for email-change tokens.
type Subject struct {
	Email    string
	NewEmail string // set for PurposeEmailChange only
}

// Key returns the uniqueness key for the subject. At most one live token
// may exist per (purpose, key).
func (s Subject) Key() string {
	if s.NewEmail == "" {
		return s.Email
	}
	return s.Email + "->" + s.NewEmail
}

// Token represents a single-use verification token
type Token struct {
	ID        uuid.UUID
	Purpose   Purpose
	Subject   Subject
	Value     string
	ExpiresAt time.Time
}

// Repository defines the storage contract for verification tokens.
//
// UpsertToken must atomically replace any existing token for the same
// (purpose, subject key); the two-step delete-then-insert is not an
// acceptable implementation because concurrent issues for the same
// subject could leave two live tokens.
type Repository interface {
	UpsertToken(ctx context.Context, token Token) error
	GetTokenByValue(ctx context.Context, purpose Purpose, value string) (Token, error)
	DeleteToken(ctx context.Context, id uuid.UUID) error
}
