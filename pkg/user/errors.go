package user

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given id or email
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when the email is already owned by another user
	ErrEmailTaken = errors.New("email already in use")

	// ErrConfirmationNotFound is returned when no two-factor confirmation
	// exists for the given user
	ErrConfirmationNotFound = errors.New("two-factor confirmation not found")
)
