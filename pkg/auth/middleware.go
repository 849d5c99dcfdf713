package auth

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/davidemioma/go-jwt-auth/pkg/api"
	"github.com/davidemioma/go-jwt-auth/pkg/session"
	"github.com/davidemioma/go-jwt-auth/pkg/user"
)

// Guard resolves a verified identity from the session cookies before a
// protected operation runs. Every failure (missing or invalid credentials,
// failed store lookup) collapses into a 401; the guard fails closed.
type Guard struct {
	sessions *session.Service
	cookies  *session.CookieService
	users    user.Repository
}

// NewGuard creates a new auth guard
func NewGuard(sessions *session.Service, cookies *session.CookieService, users user.Repository) *Guard {
	return &Guard{
		sessions: sessions,
		cookies:  cookies,
		users:    users,
	}
}

// RequireUser authenticates the request and attaches the user record to the
// request context.
//
// When the access credential is absent or invalid but the refresh credential
// still verifies, a fresh access credential is minted and written to the
// response. The renewal is an explicit value from the session service; the
// guard is the transport layer that emits it.
func (g *Guard) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := g.resolve(w, r)
		if !ok {
			unauthorized(w, r)
			return
		}

		u, err := g.users.GetUserByID(r.Context(), userID)
		if err != nil {
			slog.Debug("Failed to load user for session", "user_id", userID, "err", err)
			unauthorized(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// resolve verifies the access cookie, falling back to a sliding renewal from
// the refresh cookie
func (g *Guard) resolve(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if cookie, err := r.Cookie(session.AccessTokenName); err == nil {
		if userID, ok := g.sessions.Verify(cookie.Value); ok {
			return userID, true
		}
	}

	cookie, err := r.Cookie(session.RefreshTokenName)
	if err != nil {
		return uuid.Nil, false
	}

	renewal, err := g.sessions.RenewAccess(cookie.Value)
	if err != nil {
		return uuid.Nil, false
	}

	if err := g.cookies.SetAccessCookie(w, renewal.Access); err != nil {
		slog.Error("Failed to set renewed access cookie", "err", err)
		return uuid.Nil, false
	}

	return renewal.UserID, true
}

// RequireRole returns a middleware rejecting authenticated users that lack
// the role. Must be used after RequireUser.
func RequireRole(role user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				unauthorized(w, r)
				return
			}

			if u.Role != role {
				slog.Warn("User lacks required role", "user_id", u.ID, "role", u.Role, "required", role)
				api.Error(w, r, http.StatusForbidden, "Forbidden: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	api.Error(w, r, http.StatusUnauthorized, "Unauthorized! You need to sign in.")
}
