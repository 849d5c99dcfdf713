package signup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/davidemioma/go-jwt-auth/pkg/notification"
	"github.com/davidemioma/go-jwt-auth/pkg/password"
	"github.com/davidemioma/go-jwt-auth/pkg/user"
	"github.com/davidemioma/go-jwt-auth/pkg/verification"
)

// Service handles account registration and email verification
type Service struct {
	users    user.Repository
	tokens   *verification.Service
	notifier notification.Notifier
	hasher   password.Hasher
	now      func() time.Time
}

// NewService creates a new signup service
func NewService(
	users user.Repository,
	tokens *verification.Service,
	notifier notification.Notifier,
	hasher password.Hasher,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		hasher:   hasher,
		now:      time.Now,
	}
}

// Register creates an unverified user and emails a verification token.
// Returns user.ErrEmailTaken when the email is already in use.
func (s *Service) Register(ctx context.Context, name, email, pwd string) (user.User, error) {
	hash, err := s.hasher.Hash(pwd)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, user.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
	})
	if err != nil {
		return user.User{}, err
	}

	token, err := s.tokens.Issue(ctx, verification.PurposeEmailVerify, verification.Subject{Email: u.Email})
	if err != nil {
		return user.User{}, err
	}

	if err := s.notifier.Notify(ctx, notification.KindEmailVerify, u.Email, token.Value); err != nil {
		slog.Error("Failed to send verification email", "user_id", u.ID, "err", err)
	}

	slog.Info("User registered", "user_id", u.ID)
	return u, nil
}

// VerifyEmail consumes a verification token and marks the user's email as
// verified
func (s *Service) VerifyEmail(ctx context.Context, tokenValue string) error {
	subject, err := s.tokens.Consume(ctx, verification.PurposeEmailVerify, tokenValue)
	if err != nil {
		return err
	}

	u, err := s.users.GetUserByEmail(ctx, subject.Email)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if _, err := s.users.UpdateUser(ctx, u.ID, user.UpdateUserParams{EmailVerifiedAt: &now}); err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}

	slog.Info("Email verified", "user_id", u.ID)
	return nil
}
