package session

import (
	"net/http"
	"time"
)

// CookieSetter writes and clears cookie carriers on a response
type CookieSetter interface {
	SetCookie(w http.ResponseWriter, name, value string, expire time.Time) error
	ClearCookie(w http.ResponseWriter, name string) error
}

// BaseCookieSetter provides the default CookieSetter implementation
type BaseCookieSetter struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// NewCookieSetter creates a cookie setter with SameSite=Lax
func NewCookieSetter(httpOnly, secure bool) *BaseCookieSetter {
	return &BaseCookieSetter{
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetCookie sets a cookie with the given value and expiry
func (c *BaseCookieSetter) SetCookie(w http.ResponseWriter, name, value string, expire time.Time) error {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     c.Path,
		Value:    value,
		Expires:  expire,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	return nil
}

// ClearCookie expires a cookie immediately
func (c *BaseCookieSetter) ClearCookie(w http.ResponseWriter, name string) error {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     c.Path,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
	return nil
}

// CookieService writes session credential pairs to their cookie carriers
type CookieService struct {
	setter CookieSetter
}

// NewCookieService creates a cookie service using the given setter
func NewCookieService(setter CookieSetter) *CookieService {
	return &CookieService{setter: setter}
}

// SetSessionCookies writes both session carriers; each cookie expires with
// its credential
func (cs *CookieService) SetSessionCookies(w http.ResponseWriter, pair Pair) error {
	if err := cs.setter.SetCookie(w, AccessTokenName, pair.Access.Token, pair.Access.ExpiresAt); err != nil {
		return err
	}
	return cs.setter.SetCookie(w, RefreshTokenName, pair.Refresh.Token, pair.Refresh.ExpiresAt)
}

// SetAccessCookie rewrites the access carrier after a sliding renewal
func (cs *CookieService) SetAccessCookie(w http.ResponseWriter, access TokenValue) error {
	return cs.setter.SetCookie(w, AccessTokenName, access.Token, access.ExpiresAt)
}

// ClearSessionCookies clears every session carrier, including the legacy
// alias. Clearing an absent cookie is harmless, so the call is idempotent.
func (cs *CookieService) ClearSessionCookies(w http.ResponseWriter) {
	cs.setter.ClearCookie(w, AccessTokenName)
	cs.setter.ClearCookie(w, RefreshTokenName)
	cs.setter.ClearCookie(w, LegacyUserTokenName)
}
