package notification

import "context"

// Kind identifies the message a token is delivered with
type Kind string

const (
	KindEmailVerify   Kind = "email_verify"
	KindPasswordReset Kind = "password_reset"
	KindEmailChange   Kind = "email_change"
	KindTwoFactor     Kind = "two_factor"
)

// Notifier delivers a verification token to a recipient. Calls are
// fire-and-forget from the caller's perspective: failures are logged and
// never alter the caller's control flow.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, recipient, token string) error
}
