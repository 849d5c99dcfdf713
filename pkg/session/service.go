package session

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Cookie names for the session carriers
const (
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"

	// LegacyUserTokenName is an alias cleared on logout for sessions
	// created by older releases.
	LegacyUserTokenName = "user"
)

// Default credential lifetimes
const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 60 * time.Minute
)

// ErrUnauthorized is returned when a session credential is absent, invalid
// or expired. All failure causes fold into this single error so callers
// cannot distinguish why validation failed.
var ErrUnauthorized = errors.New("unauthorized")

// TokenValue holds a signed credential and its expiry
type TokenValue struct {
	Token     string
	ExpiresAt time.Time
}

// Pair is an access/refresh credential pair, each independently signed
// and independently expiring
type Pair struct {
	Access  TokenValue
	Refresh TokenValue
}

// Renewal is the explicit result of a sliding renewal: the transport layer
// is responsible for emitting the new access credential. Renewal is a
// return value rather than a hidden response mutation.
type Renewal struct {
	UserID uuid.UUID
	Access TokenValue
}

// Service mints and validates signed session credentials. There is no
// server-side session record; the signed claim is the sole source of truth.
type Service struct {
	secret        []byte
	issuer        string
	audience      string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithAccessTokenExpiry sets the access credential lifetime
func WithAccessTokenExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		s.accessExpiry = expiry
	}
}

// WithRefreshTokenExpiry sets the refresh credential lifetime
func WithRefreshTokenExpiry(expiry time.Duration) Option {
	return func(s *Service) {
		s.refreshExpiry = expiry
	}
}

// WithIssuer sets the iss claim on minted credentials
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithAudience sets the aud claim on minted credentials
func WithAudience(audience string) Option {
	return func(s *Service) {
		s.audience = audience
	}
}

// NewService creates a new session service signing with the given HMAC secret
func NewService(secret string, opts ...Option) *Service {
	s := &Service{
		secret:        []byte(secret),
		accessExpiry:  DefaultAccessTokenExpiry,
		refreshExpiry: DefaultRefreshTokenExpiry,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateSession mints a fresh access/refresh credential pair for the user
func (s *Service) CreateSession(userID uuid.UUID) (Pair, error) {
	access, err := s.generate(userID, s.accessExpiry)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := s.generate(userID, s.refreshExpiry)
	if err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

func (s *Service) generate(userID uuid.UUID, expiry time.Duration) (TokenValue, error) {
	now := s.now().UTC()
	expiresAt := now.Add(expiry)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Issuer:    s.issuer,
		ID:        uuid.NewString(),
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		slog.Error("Failed to sign session credential", "err", err)
		return TokenValue{}, err
	}

	return TokenValue{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify decodes and signature-validates a credential, returning the user id
// it asserts. Malformed, expired, wrong-algorithm and missing-subject inputs
// all return ok=false; no cause is reported.
func (s *Service) Verify(tokenStr string) (uuid.UUID, bool) {
	if tokenStr == "" {
		return uuid.Nil, false
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, false
	}

	return userID, true
}

// RenewAccess mints a new access credential on the strength of a still-valid
// refresh credential, without re-authentication. The caller emits the
// returned credential; nothing is emitted on failure.
func (s *Service) RenewAccess(refreshToken string) (Renewal, error) {
	userID, ok := s.Verify(refreshToken)
	if !ok {
		return Renewal{}, ErrUnauthorized
	}

	access, err := s.generate(userID, s.accessExpiry)
	if err != nil {
		return Renewal{}, err
	}

	return Renewal{UserID: userID, Access: access}, nil
}
