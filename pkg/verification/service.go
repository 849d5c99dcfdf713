package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Default token lifetimes per purpose
const (
	DefaultEmailVerifyExpiry   = 10 * time.Minute
	DefaultPasswordResetExpiry = 10 * time.Minute
	DefaultEmailChangeExpiry   = 10 * time.Minute
	DefaultTwoFactorExpiry     = 5 * time.Minute
)

// Service issues and consumes single-use verification tokens. The store is
// authoritative; the service keeps no token state in memory.
type Service struct {
	repo Repository
	ttls map[Purpose]time.Duration
	now  func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithTokenExpiry overrides the token lifetime for a purpose
func WithTokenExpiry(purpose Purpose, expiry time.Duration) Option {
	return func(s *Service) {
		s.ttls[purpose] = expiry
	}
}

// NewService creates a new verification token service
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		ttls: map[Purpose]time.Duration{
			PurposeEmailVerify:   DefaultEmailVerifyExpiry,
			PurposePasswordReset: DefaultPasswordResetExpiry,
			PurposeEmailChange:   DefaultEmailChangeExpiry,
			PurposeTwoFactor:     DefaultTwoFactorExpiry,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Issue mints a new token for (purpose, subject), superseding any live token
// for the same subject key. Token values are UUIDs except for two-factor
// tokens, which are random 6-digit passcodes.
func (s *Service) Issue(ctx context.Context, purpose Purpose, subject Subject) (Token, error) {
	value, err := generateValue(purpose)
	if err != nil {
		slog.Error("Failed to generate token value", "purpose", purpose, "err", err)
		return Token{}, fmt.Errorf("failed to generate token value: %w", err)
	}

	token := Token{
		ID:        uuid.New(),
		Purpose:   purpose,
		Subject:   subject,
		Value:     value,
		ExpiresAt: s.now().UTC().Add(s.ttls[purpose]),
	}

	if err := s.repo.UpsertToken(ctx, token); err != nil {
		slog.Error("Failed to store verification token", "purpose", purpose, "err", err)
		return Token{}, fmt.Errorf("failed to store verification token: %w", err)
	}

	return token, nil
}

// Consume validates and deletes a token in one operation. It returns
// ErrTokenNotFound when no token matches the value and ErrTokenExpired when
// the token matched but is past its expiry; the expired token is deleted so
// it cannot be probed again.
func (s *Service) Consume(ctx context.Context, purpose Purpose, value string) (Subject, error) {
	token, err := s.repo.GetTokenByValue(ctx, purpose, value)
	if err != nil {
		return Subject{}, err
	}

	if s.now().UTC().After(token.ExpiresAt) {
		if err := s.repo.DeleteToken(ctx, token.ID); err != nil {
			slog.Error("Failed to delete expired token", "purpose", purpose, "token_id", token.ID, "err", err)
		}
		return Subject{}, ErrTokenExpired
	}

	if err := s.repo.DeleteToken(ctx, token.ID); err != nil {
		slog.Error("Failed to delete consumed token", "purpose", purpose, "token_id", token.ID, "err", err)
		return Subject{}, fmt.Errorf("failed to delete consumed token: %w", err)
	}

	return token.Subject, nil
}

// generateValue returns a fresh token value: a UUIDv4, or a uniformly random
// 6-digit decimal passcode for two-factor tokens.
func generateValue(purpose Purpose) (string, error) {
	if purpose != PurposeTwoFactor {
		return uuid.NewString(), nil
	}

	n, err := rand.Int(rand.Reader, big.NewInt(900_000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100_000, 10), nil
}
