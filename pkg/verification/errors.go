package verification

import "errors"

var (
	// ErrTokenNotFound is returned when no token matches the given value
	ErrTokenNotFound = errors.New("verification token not found")

	// ErrTokenExpired is returned when a token matched but is past its
	// expiry; the token is deleted on this path so it cannot be re-probed
	ErrTokenExpired = errors.New("verification token has expired")
)
