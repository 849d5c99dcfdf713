package login

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/davidemioma/go-jwt-auth/pkg/api"
	"github.com/davidemioma/go-jwt-auth/pkg/session"
	"github.com/davidemioma/go-jwt-auth/pkg/user"
	"github.com/davidemioma/go-jwt-auth/pkg/validation"
	"github.com/davidemioma/go-jwt-auth/pkg/verification"
)

// Handle exposes the login, logout and password reset routes
type Handle struct {
	service *Service
	cookies *session.CookieService
}

// Option configures a Handle
type Option func(*Handle)

// WithService sets the login service
func WithService(s *Service) Option {
	return func(h *Handle) {
		h.service = s
	}
}

// WithCookieService sets the session cookie service
func WithCookieService(cs *session.CookieService) Option {
	return func(h *Handle) {
		h.cookies = cs
	}
}

// NewHandle creates a new login handle
func NewHandle(opts ...Option) Handle {
	h := Handle{}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Routes returns the router for the login endpoints
func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/reset-password", h.ResetPassword)
	r.Patch("/new-password", h.NewPassword)
	r.Get("/logout", h.Logout)
	return r
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code,omitempty" validate:"omitempty,numeric,len=6"`
}

// Login a user
// (POST /login)
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var data LoginRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		api.Error(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	if result := validation.Check(data); !result.Ok() {
		api.ValidationFailed(w, r, result)
		return
	}

	result, err := h.service.Login(r.Context(), data.Email, data.Password, data.Code)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			api.Error(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, verification.ErrTokenNotFound):
			api.Error(w, r, http.StatusNotFound, "Token not found")
		case errors.Is(err, verification.ErrTokenExpired):
			api.Error(w, r, http.StatusUnauthorized, "Token has expired")
		case errors.Is(err, ErrInvalidCredentials):
			api.Error(w, r, http.StatusUnauthorized, "Wrong password! Try again.")
		default:
			slog.Error("Login failed", "err", err)
			api.Error(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	switch result.Status {
	case StatusVerificationPending:
		api.Error(w, r, http.StatusForbidden, "Confirmation email sent!")
	case StatusTwoFactorRequired:
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, map[string]bool{"twoFactor": true})
	default:
		if err := h.cookies.SetSessionCookies(w, result.Tokens); err != nil {
			slog.Error("Failed to set session cookies", "err", err)
			api.Error(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
		api.Message(w, r, http.StatusOK, "Login successful!")
	}
}

// ResetRequest is the body of POST /reset-password
type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Request a password reset email
// (POST /reset-password)
func (h Handle) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var data ResetRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		api.Error(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	if result := validation.Check(data); !result.Ok() {
		api.ValidationFailed(w, r, result)
		return
	}

	if err := h.service.InitPasswordReset(r.Context(), data.Email); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			api.Error(w, r, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("Failed to init password reset", "err", err)
		api.Error(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.Message(w, r, http.StatusOK, "Password reset email sent!")
}

// NewPasswordRequest is the body of PATCH /new-password
type NewPasswordRequest struct {
	Token    string `json:"token" validate:"required,uuid4"`
	Password string `json:"password" validate:"required,password"`
}

// Set a new password using a reset token
// (PATCH /new-password)
func (h Handle) NewPassword(w http.ResponseWriter, r *http.Request) {
	var data NewPasswordRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		api.Error(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	if result := validation.Check(data); !result.Ok() {
		api.ValidationFailed(w, r, result)
		return
	}

	if err := h.service.ResetPassword(r.Context(), data.Token, data.Password); err != nil {
		switch {
		case errors.Is(err, verification.ErrTokenNotFound), errors.Is(err, user.ErrUserNotFound):
			api.Error(w, r, http.StatusNotFound, "Token not found")
		case errors.Is(err, verification.ErrTokenExpired):
			api.Error(w, r, http.StatusUnauthorized, "Token has expired")
		default:
			slog.Error("Failed to reset password", "err", err)
			api.Error(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	api.Message(w, r, http.StatusOK, "Password has been reset")
}

// Log out by clearing every session carrier
// (GET /logout)
func (h Handle) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSessionCookies(w)
	api.Message(w, r, http.StatusOK, "Logged out")
}
