package login

import (
	"github.com/google/uuid"

	"github.com/davidemioma/go-jwt-auth/pkg/session"
)

// Status is the tagged outcome of a login attempt that did not fail outright
type Status string

const (
	// StatusSuccess means the user is authenticated and Tokens carries the
	// session pair.
	StatusSuccess Status = "success"

	// StatusVerificationPending means the email is not verified yet; a fresh
	// verification email was sent and no session was created.
	StatusVerificationPending Status = "verification_pending"

	// StatusTwoFactorRequired means a passcode was emailed and the caller
	// must retry the login with it; no session was created.
	StatusTwoFactorRequired Status = "two_factor_required"
)

// Result carries the outcome of a login attempt
type Result struct {
	Status Status
	UserID uuid.UUID
	Tokens session.Pair
}
