package verification

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueSupersedesPreviousToken(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryRepository())
	subject := Subject{Email: "alice@example.com"}

	first, err := service.Issue(ctx, PurposeEmailVerify, subject)
	require.NoError(t, err)

	second, err := service.Issue(ctx, PurposeEmailVerify, subject)
	require.NoError(t, err)
	require.NotEqual(t, first.Value, second.Value)

	// The superseded value is gone, the fresh one consumes normally.
	_, err = service.Consume(ctx, PurposeEmailVerify, first.Value)
	require.ErrorIs(t, err, ErrTokenNotFound)

	got, err := service.Consume(ctx, PurposeEmailVerify, second.Value)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func TestIssueSamePurposeDifferentSubjects(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryRepository())

	alice, err := service.Issue(ctx, PurposePasswordReset, Subject{Email: "alice@example.com"})
	require.NoError(t, err)
	bob, err := service.Issue(ctx, PurposePasswordReset, Subject{Email: "bob@example.com"})
	require.NoError(t, err)

	// Independent subjects never supersede each other.
	_, err = service.Consume(ctx, PurposePasswordReset, alice.Value)
	require.NoError(t, err)
	_, err = service.Consume(ctx, PurposePasswordReset, bob.Value)
	require.NoError(t, err)
}

func TestConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryRepository())

	token, err := service.Issue(ctx, PurposeEmailVerify, Subject{Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = service.Consume(ctx, PurposeEmailVerify, token.Value)
	require.NoError(t, err)

	_, err = service.Consume(ctx, PurposeEmailVerify, token.Value)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConsumeUnknownValue(t *testing.T) {
	service := NewService(NewInMemoryRepository())

	_, err := service.Consume(context.Background(), PurposeEmailVerify, "no-such-token")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConsumeWrongPurpose(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryRepository())

	token, err := service.Issue(ctx, PurposeEmailVerify, Subject{Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = service.Consume(ctx, PurposePasswordReset, token.Value)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConsumeAtExpiryBoundary(t *testing.T) {
	ctx := context.Background()

	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("just before expiry succeeds", func(t *testing.T) {
		service := NewService(NewInMemoryRepository())
		service.now = func() time.Time { return base }

		token, err := service.Issue(ctx, PurposeEmailVerify, Subject{Email: "alice@example.com"})
		require.NoError(t, err)

		service.now = func() time.Time { return base.Add(DefaultEmailVerifyExpiry - time.Second) }
		_, err = service.Consume(ctx, PurposeEmailVerify, token.Value)
		require.NoError(t, err)
	})

	t.Run("just after expiry fails and deletes", func(t *testing.T) {
		service := NewService(NewInMemoryRepository())
		service.now = func() time.Time { return base }

		token, err := service.Issue(ctx, PurposeEmailVerify, Subject{Email: "alice@example.com"})
		require.NoError(t, err)

		service.now = func() time.Time { return base.Add(DefaultEmailVerifyExpiry + time.Second) }
		_, err = service.Consume(ctx, PurposeEmailVerify, token.Value)
		require.ErrorIs(t, err, ErrTokenExpired)

		// The expired token was removed, so probing again reveals nothing.
		_, err = service.Consume(ctx, PurposeEmailVerify, token.Value)
		require.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestWithTokenExpiry(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	service := NewService(NewInMemoryRepository(), WithTokenExpiry(PurposeEmailVerify, time.Minute))
	service.now = func() time.Time { return base }

	token, err := service.Issue(ctx, PurposeEmailVerify, Subject{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Minute), token.ExpiresAt)
}

func TestTwoFactorTokenIsSixDigits(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryRepository())

	pattern := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 20; i++ {
		token, err := service.Issue(ctx, PurposeTwoFactor, Subject{Email: "alice@example.com"})
		require.NoError(t, err)
		assert.Regexp(t, pattern, token.Value)
	}
}

func TestEmailChangeSubjectRoundTrip(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewInMemoryRepository())

	subject := Subject{Email: "alice@example.com", NewEmail: "alice@new.example.com"}
	token, err := service.Issue(ctx, PurposeEmailChange, subject)
	require.NoError(t, err)

	got, err := service.Consume(ctx, PurposeEmailChange, token.Value)
	require.NoError(t, err)
	assert.Equal(t, subject, got)

	// A change to a different target address is a different subject and
	// does not collide with tokens for other targets.
	other := Subject{Email: "alice@example.com", NewEmail: "alice@other.example.com"}
	require.NotEqual(t, subject.Key(), other.Key())
}
