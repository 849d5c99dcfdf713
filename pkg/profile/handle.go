package profile

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/davidemioma/go-jwt-auth/pkg/api"
	"github.com/davidemioma/go-jwt-auth/pkg/auth"
	"github.com/davidemioma/go-jwt-auth/pkg/user"
	"github.com/davidemioma/go-jwt-auth/pkg/validation"
	"github.com/davidemioma/go-jwt-auth/pkg/verification"
)

// Handle exposes the authenticated user routes
type Handle struct {
	service *Service
}

// Option configures a Handle
type Option func(*Handle)

// WithService sets the profile service
func WithService(s *Service) Option {
	return func(h *Handle) {
		h.service = s
	}
}

// NewHandle creates a new profile handle
func NewHandle(opts ...Option) Handle {
	h := Handle{}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Routes returns the router for the user endpoints. The caller mounts it
// behind the auth guard.
func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetUser)
	r.Patch("/update-settings", h.UpdateSettings)
	r.Patch("/new-email", h.ConfirmEmailChange)
	r.With(auth.RequireRole(user.RoleAdmin)).Get("/admin-only", h.AdminOnly)
	return r
}

// UserResponse is the API shape of a user record
type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             user.Role  `json:"role"`
	EmailVerifiedAt  *time.Time `json:"emailVerified"`
	TwoFactorEnabled bool       `json:"isTwoFactorEnabled"`
}

// Return the authenticated user
// (GET /)
func (h Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		api.Error(w, r, http.StatusUnauthorized, "Unauthorized! You need to sign in.")
		return
	}

	var resp UserResponse
	if err := copier.Copy(&resp, &u); err != nil {
		slog.Error("Failed to map user response", "err", err)
		api.Error(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	render.JSON(w, r, map[string]UserResponse{"user": resp})
}

// UpdateSettingsRequest is the body of PATCH /update-settings.
// Password and NewPassword are only valid together.
type UpdateSettingsRequest struct {
	Name             *string    `json:"name,omitempty" validate:"omitempty,min=2"`
	Email            *string    `json:"email,omitempty" validate:"omitempty,email"`
	Password         *string    `json:"password,omitempty" validate:"required_with=NewPassword,omitempty,password"`
	NewPassword      *string    `json:"newPassword,omitempty" validate:"required_with=Password,omitempty,password"`
	Role             *user.Role `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	TwoFactorEnabled *bool      `json:"isTwoFactorEnabled,omitempty"`
}

// Update profile and security settings
// (PATCH /update-settings)
func (h Handle) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		api.Error(w, r, http.StatusUnauthorized, "Unauthorized! Log in to update settings")
		return
	}

	var data UpdateSettingsRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		api.Error(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	if result := validation.Check(data); !result.Ok() {
		api.ValidationFailed(w, r, result)
		return
	}

	status, err := h.service.UpdateSettings(r.Context(), u, UpdateSettingsParams{
		Name:             data.Name,
		Email:            data.Email,
		Password:         data.Password,
		NewPassword:      data.NewPassword,
		Role:             data.Role,
		TwoFactorEnabled: data.TwoFactorEnabled,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			api.Error(w, r, http.StatusConflict, "Email already in use")
		case errors.Is(err, ErrWrongPassword):
			api.Error(w, r, http.StatusUnauthorized, "Wrong password!")
		default:
			slog.Error("Failed to update settings", "user_id", u.ID, "err", err)
			api.Error(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if status == StatusPendingEmailVerification {
		api.Message(w, r, http.StatusAccepted, "Verification email sent!")
		return
	}
	api.Message(w, r, http.StatusOK, "Settings updated!")
}

// Confirm an email change using a token
// (PATCH /new-email)
func (h Handle) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		api.Error(w, r, http.StatusUnauthorized, "Unauthorized! You need to sign in.")
		return
	}

	var data struct {
		Token string `json:"token" validate:"required,uuid4"`
	}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		api.Error(w, r, http.StatusBadRequest, "Unable to parse request body")
		return
	}
	if result := validation.Check(data); !result.Ok() {
		api.ValidationFailed(w, r, result)
		return
	}

	if err := h.service.ConfirmEmailChange(r.Context(), u, data.Token); err != nil {
		switch {
		case errors.Is(err, verification.ErrTokenNotFound):
			api.Error(w, r, http.StatusNotFound, "Token not found")
		case errors.Is(err, user.ErrUserNotFound):
			api.Error(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, verification.ErrTokenExpired):
			api.Error(w, r, http.StatusUnauthorized, "Token has expired")
		case errors.Is(err, user.ErrEmailTaken):
			api.Error(w, r, http.StatusConflict, "Email already in use")
		default:
			slog.Error("Failed to confirm email change", "user_id", u.ID, "err", err)
			api.Error(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	api.Message(w, r, http.StatusOK, "Email has been changed")
}

// AdminOnly greets administrators; everyone else is rejected by RequireRole
// (GET /admin-only)
func (h Handle) AdminOnly(w http.ResponseWriter, r *http.Request) {
	api.Message(w, r, http.StatusOK, "Hello, Admin")
}
