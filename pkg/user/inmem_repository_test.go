package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetUser(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, CreateUserParams{
		Name:         "Alice",
		Email:        "Alice@Example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.False(t, u.EmailVerified())

	byID, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, byID)

	// Lookup is case-insensitive.
	byEmail, err := repo.GetUserByEmail(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u, byEmail)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, CreateUserParams{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, CreateUserParams{Name: "Other", Email: "ALICE@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUserNotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetUserByID(ctx, uuid.New())
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUserPartial(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, CreateUserParams{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	name := "Alice Cooper"
	updated, err := repo.UpdateUser(ctx, u.ID, UpdateUserParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.Name)
	// Untouched fields survive a partial update.
	assert.Equal(t, u.Email, updated.Email)
	assert.Equal(t, u.PasswordHash, updated.PasswordHash)
}

func TestUpdateUserEmailMovesIndex(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, CreateUserParams{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	email := "alice@new.example.com"
	_, err = repo.UpdateUser(ctx, u.ID, UpdateUserParams{Email: &email})
	require.NoError(t, err)

	_, err = repo.GetUserByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	got, err := repo.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, CreateUserParams{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, CreateUserParams{Name: "Bob", Email: "bob@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	email := "bob@example.com"
	_, err = repo.UpdateUser(ctx, u.ID, UpdateUserParams{Email: &email})
	require.ErrorIs(t, err, ErrEmailTaken)

	// Updating to the same address is a no-op, not a conflict.
	own := "alice@example.com"
	_, err = repo.UpdateUser(ctx, u.ID, UpdateUserParams{Email: &own})
	require.NoError(t, err)
}

func TestTwoFactorConfirmationLifecycle(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, CreateUserParams{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.GetTwoFactorConfirmationByUserID(ctx, u.ID)
	require.ErrorIs(t, err, ErrConfirmationNotFound)

	c, err := repo.CreateTwoFactorConfirmation(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, c.UserID)

	got, err := repo.GetTwoFactorConfirmationByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	require.NoError(t, repo.DeleteTwoFactorConfirmation(ctx, c.ID))
	_, err = repo.GetTwoFactorConfirmationByUserID(ctx, u.ID)
	require.ErrorIs(t, err, ErrConfirmationNotFound)

	// Deleting again stays silent.
	require.NoError(t, repo.DeleteTwoFactorConfirmation(ctx, c.ID))
}
