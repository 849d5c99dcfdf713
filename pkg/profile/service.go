package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/davidemioma/go-jwt-auth/pkg/notification"
	"github.com/davidemioma/go-jwt-auth/pkg/password"
	"github.com/davidemioma/go-jwt-auth/pkg/user"
	"github.com/davidemioma/go-jwt-auth/pkg/verification"
)

// ErrWrongPassword is returned when the supplied current password does not
// match the stored hash
var ErrWrongPassword = errors.New("wrong password")

// UpdateStatus tags the outcome of a settings update
type UpdateStatus string

const (
	// StatusApplied means the requested fields were written.
	StatusApplied UpdateStatus = "applied"

	// StatusPendingEmailVerification means an email change was requested:
	// a confirmation token was sent to the new address and nothing was
	// applied in this call.
	StatusPendingEmailVerification UpdateStatus = "pending_email_verification"
)

// UpdateSettingsParams is a partial update; nil fields are left unchanged.
// Password and NewPassword must be supplied together; the validation layer
// rejects one without the other before this flow is reached.
type UpdateSettingsParams struct {
	Name             *string
	Email            *string
	Password         *string
	NewPassword      *string
	Role             *user.Role
	TwoFactorEnabled *bool
}

// Service applies profile and security changes with conditional
// re-verification (email change) and re-authentication (password change)
type Service struct {
	users    user.Repository
	tokens   *verification.Service
	notifier notification.Notifier
	hasher   password.Hasher
	now      func() time.Time
}

// NewService creates a new profile service
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

// UpdateSettings applies the partial update for the current user.
//
// The email-change branch is exclusive and takes precedence: when the email
// differs from the current one, a confirmation token is issued and NO other
// field is applied in this call. The email itself is only committed by
// ConfirmEmailChange.
func (s *Service) UpdateSettings(ctx context.Context, current user.User, params UpdateSettingsParams) (UpdateStatus, error) {
	if params.Email != nil && *params.Email != current.Email {
		return s.initEmailChange(ctx, current, *params.Email)
	}

	update := user.UpdateUserParams{
		Name:             params.Name,
		Role:             params.Role,
		TwoFactorEnabled: params.TwoFactorEnabled,
	}

	if params.Password != nil && params.NewPassword != nil {
		ok, err := s.hasher.Verify(*params.Password, current.PasswordHash)
		if err != nil {
			return "", fmt.Errorf("failed to verify password: %w", err)
		}
		if !ok {
			return "", ErrWrongPassword
		}

		hash, err := s.hasher.Hash(*params.NewPassword)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	if _, err := s.users.UpdateUser(ctx, current.ID, update); err != nil {
		return "", fmt.Errorf("failed to update settings: %w", err)
	}

	slog.Info("Settings updated", "user_id", current.ID)
	return StatusApplied, nil
}

func (s *Service) initEmailChange(ctx context.Context, current user.User, newEmail string) (UpdateStatus, error) {
	owner, err := s.users.GetUserByEmail(ctx, newEmail)
	if err == nil && owner.ID != current.ID {
		return "", user.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return "", err
	}

	token, err := s.tokens.Issue(ctx, verification.PurposeEmailChange, verification.Subject{
		Email:    current.Email,
		NewEmail: newEmail,
	})
	if err != nil {
		return "", err
	}

	if err := s.notifier.Notify(ctx, notification.KindEmailChange, newEmail, token.Value); err != nil {
		slog.Error("Failed to send email change confirmation", "user_id", current.ID, "err", err)
	}

	slog.Info("Email change pending verification", "user_id", current.ID)
	return StatusPendingEmailVerification, nil
}

// ConfirmEmailChange consumes an email-change token and commits the new
// email address, marking it verified
func (s *Service) ConfirmEmailChange(ctx context.Context, current user.User, tokenValue string) error {
	subject, err := s.tokens.Consume(ctx, verification.PurposeEmailChange, tokenValue)
	if err != nil {
		return err
	}

	// The token must have been issued for this user's current address.
	if subject.Email != current.Email {
		return user.ErrUserNotFound
	}

	now := s.now().UTC()
	_, err = s.users.UpdateUser(ctx, current.ID, user.UpdateUserParams{
		Email:           &subject.NewEmail,
		EmailVerifiedAt: &now,
	})
	if err != nil {
		return fmt.Errorf("failed to commit email change: %w", err)
	}

	slog.Info("Email changed", "user_id", current.ID)
	return nil
}
