package auth

import (
	"context"

	"github.com/davidemioma/go-jwt-auth/pkg/user"
)

type contextKey struct{}

var userContextKey = contextKey{}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the authenticated user attached by the guard
// middleware, if any
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userContextKey).(user.User)
	return u, ok
}
