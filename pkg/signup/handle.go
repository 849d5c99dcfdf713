package signup

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/davidemioma/go-jwt-auth/pkg/api"
	"github.com/davidemioma/go-jwt-auth/pkg/user"
	"github.com/davidemioma/go-jwt-auth/pkg/validation"
	"github.com/davidemioma/go-jwt-auth/pkg/verification"
)

// Handle exposes the registration and email verification routes
type Handle struct {
	service *Service
}

// Option configures a Handle
type Option func(*Handle)

// WithService sets the signup service
func WithService(s *Service) Option {
	return func(h *Handle) {
		h.service = s
	}
}

// NewHandle creates a new signup handle
func NewHandle(opts ...Option) Handle {
	h := Handle{}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Routes returns the router for the signup endpoints
func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Patch("/verify-email", h.VerifyEmail)
	return r
}

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// Register a new user
// (POST /register)
func (h Handle) Register(w http.ResponseWriter, r *http.Request) {
	var data RegisterRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		api.Error(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	if result := validation.Check(data); !result.Ok() {
		api.ValidationFailed(w, r, result)
		return
	}

	if _, err := h.service.Register(r.Context(), data.Name, data.Email, data.Password); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			api.Error(w, r, http.StatusConflict, "Email already in use")
			return
		}
		slog.Error("Failed to register user", "err", err)
		api.Error(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.Message(w, r, http.StatusCreated, "Confirmation email sent!")
}

// VerifyTokenRequest is the body of PATCH /verify-email
type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required,uuid4"`
}

// Verify an email address using a token
// (PATCH /verify-email)
func (h Handle) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var data VerifyTokenRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		api.Error(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	if result := validation.Check(data); !result.Ok() {
		api.ValidationFailed(w, r, result)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), data.Token); err != nil {
		switch {
		case errors.Is(err, verification.ErrTokenNotFound):
			api.Error(w, r, http.StatusNotFound, "Token not found")
		case errors.Is(err, user.ErrUserNotFound):
			api.Error(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, verification.ErrTokenExpired):
			api.Error(w, r, http.StatusUnauthorized, "Token has expired")
		default:
			slog.Error("Failed to verify email", "err", err)
			api.Error(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	api.Message(w, r, http.StatusOK, "Email has been verified")
}
