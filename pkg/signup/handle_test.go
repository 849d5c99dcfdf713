package signup

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	f := newSignupFixture(t)
	router := NewHandle(WithService(f.service)).Routes()

	t.Run("created", func(t *testing.T) {
		rec := sendJSON(t, router, http.MethodPost, "/register", map[string]string{
			"name":     "Alice",
			"email":    "alice@example.com",
			"password": "Password1!",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "Confirmation email sent!")
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := sendJSON(t, router, http.MethodPost, "/register", map[string]string{
			"name":     "Other Alice",
			"email":    "alice@example.com",
			"password": "Password2!",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email already in use")
	})

	t.Run("weak password", func(t *testing.T) {
		rec := sendJSON(t, router, http.MethodPost, "/register", map[string]string{
			"name":     "Bob",
			"email":    "bob@example.com",
			"password": "weak",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "password")
	})
}

func TestVerifyEmailEndpoint(t *testing.T) {
	f := newSignupFixture(t)
	router := NewHandle(WithService(f.service)).Routes()

	u, err := f.service.Register(context.Background(), "Alice", "alice@example.com", "Password1!")
	require.NoError(t, err)

	sent, ok := f.notifier.Last()
	require.True(t, ok)

	t.Run("verifies", func(t *testing.T) {
		rec := sendJSON(t, router, http.MethodPatch, "/verify-email", map[string]string{
			"token": sent.Token,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Email has been verified")

		got, err := f.users.GetUserByID(context.Background(), u.ID)
		require.NoError(t, err)
		assert.True(t, got.EmailVerified())
	})

	t.Run("token is single use", func(t *testing.T) {
		rec := sendJSON(t, router, http.MethodPatch, "/verify-email", map[string]string{
			"token": sent.Token,
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed token rejected before lookup", func(t *testing.T) {
		rec := sendJSON(t, router, http.MethodPatch, "/verify-email", map[string]string{
			"token": "not-a-uuid",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
