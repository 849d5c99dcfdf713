package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSetSessionCookies(t *testing.T) {
	service := NewCookieService(NewCookieSetter(true, false))

	expire := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	pair := Pair{
		Access:  TokenValue{Token: "access-value", ExpiresAt: expire},
		Refresh: TokenValue{Token: "refresh-value", ExpiresAt: expire.Add(time.Hour)},
	}

	rec := httptest.NewRecorder()
	require.NoError(t, service.SetSessionCookies(rec, pair))

	cookies := cookiesByName(rec)
	require.Len(t, cookies, 2)

	access := cookies[AccessTokenName]
	require.NotNil(t, access)
	assert.Equal(t, "access-value", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.WithinDuration(t, expire, access.Expires, time.Second)

	refresh := cookies[RefreshTokenName]
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-value", refresh.Value)
}

func TestSetAccessCookie(t *testing.T) {
	service := NewCookieService(NewCookieSetter(true, true))

	rec := httptest.NewRecorder()
	require.NoError(t, service.SetAccessCookie(rec, TokenValue{
		Token:     "renewed-access",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}))

	cookies := cookiesByName(rec)
	require.Len(t, cookies, 1)
	assert.Equal(t, "renewed-access", cookies[AccessTokenName].Value)
	assert.True(t, cookies[AccessTokenName].Secure)
}

func TestClearSessionCookies(t *testing.T) {
	service := NewCookieService(NewCookieSetter(true, false))

	rec := httptest.NewRecorder()
	service.ClearSessionCookies(rec)

	cookies := cookiesByName(rec)
	require.Len(t, cookies, 3)
	for _, name := range []string{AccessTokenName, RefreshTokenName, LegacyUserTokenName} {
		c := cookies[name]
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}
