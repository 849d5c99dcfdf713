package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/davidemioma/go-jwt-auth/pkg/notification"
	"github.com/davidemioma/go-jwt-auth/pkg/password"
	"github.com/davidemioma/go-jwt-auth/pkg/session"
	"github.com/davidemioma/go-jwt-auth/pkg/user"
	"github.com/davidemioma/go-jwt-auth/pkg/verification"
)

// Service runs the login state machine and the password reset operations
type Service struct {
	users    user.Repository
	tokens   *verification.Service
	sessions *session.Service
	notifier notification.Notifier
	hasher   password.Hasher
}

// NewService creates a new login service
func NewService(
	users user.Repository,
	tokens *verification.Service,
	sessions *session.Service,
	notifier notification.Notifier,
	hasher password.Hasher,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		notifier: notifier,
		hasher:   hasher,
	}
}

// Login runs the login state machine for (email, password, optional code).
//
// The check order is a contract: unverified email is reported before the
// two-factor challenge, which is reported before a wrong password. Callers
// observing "verification pending" learn nothing about the password.
func (s *Service) Login(ctx context.Context, email, pwd, code string) (Result, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return Result{}, err
	}

	if !u.EmailVerified() {
		token, err := s.tokens.Issue(ctx, verification.PurposeEmailVerify, verification.Subject{Email: u.Email})
		if err != nil {
			return Result{}, err
		}
		s.notify(ctx, notification.KindEmailVerify, u.Email, token.Value)
		return Result{Status: StatusVerificationPending}, nil
	}

	if u.TwoFactorEnabled {
		if code == "" {
			token, err := s.tokens.Issue(ctx, verification.PurposeTwoFactor, verification.Subject{Email: u.Email})
			if err != nil {
				return Result{}, err
			}
			s.notify(ctx, notification.KindTwoFactor, u.Email, token.Value)
			return Result{Status: StatusTwoFactorRequired}, nil
		}

		if err := s.checkTwoFactorCode(ctx, u, code); err != nil {
			return Result{}, err
		}
	}

	ok, err := s.hasher.Verify(pwd, u.PasswordHash)
	if err != nil {
		return Result{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return Result{}, ErrInvalidCredentials
	}

	pair, err := s.sessions.CreateSession(u.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("User logged in", "user_id", u.ID)
	return Result{Status: StatusSuccess, UserID: u.ID, Tokens: pair}, nil
}

// checkTwoFactorCode consumes the passcode and supersedes any previous
// two-factor confirmation for the user (delete then insert).
func (s *Service) checkTwoFactorCode(ctx context.Context, u user.User, code string) error {
	subject, err := s.tokens.Consume(ctx, verification.PurposeTwoFactor, code)
	if err != nil {
		return err
	}

	// A passcode issued to a different account must not unlock this one.
	if subject.Email != u.Email {
		return verification.ErrTokenNotFound
	}

	existing, err := s.users.GetTwoFactorConfirmationByUserID(ctx, u.ID)
	if err == nil {
		if err := s.users.DeleteTwoFactorConfirmation(ctx, existing.ID); err != nil {
			return fmt.Errorf("failed to supersede two-factor confirmation: %w", err)
		}
	} else if !errors.Is(err, user.ErrConfirmationNotFound) {
		return err
	}

	if _, err := s.users.CreateTwoFactorConfirmation(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to create two-factor confirmation: %w", err)
	}
	return nil
}

// InitPasswordReset issues a reset token and emails it to the user
func (s *Service) InitPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.Issue(ctx, verification.PurposePasswordReset, verification.Subject{Email: u.Email})
	if err != nil {
		return err
	}

	s.notify(ctx, notification.KindPasswordReset, u.Email, token.Value)
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash
func (s *Service) ResetPassword(ctx context.Context, tokenValue, newPassword string) error {
	subject, err := s.tokens.Consume(ctx, verification.PurposePasswordReset, tokenValue)
	if err != nil {
		return err
	}

	u, err := s.users.GetUserByEmail(ctx, subject.Email)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.UpdateUser(ctx, u.ID, user.UpdateUserParams{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("Password reset", "user_id", u.ID)
	return nil
}

// notify delivers a token best-effort; failures are logged only
func (s *Service) notify(ctx context.Context, kind notification.Kind, recipient, token string) {
	if err := s.notifier.Notify(ctx, kind, recipient, token); err != nil {
		slog.Error("Failed to send notification", "kind", kind, "err", err)
	}
}
