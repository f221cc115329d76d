package sessions

import (
	"encoding/json"
	"time"

	errs "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

var (
	// ErrNotFound is returned by a Store when the key holds no value.
	ErrNotFound = errs.ErrNotFound
	// ErrInvalidSession is returned when session data is incomplete or inconsistent.
	ErrInvalidSession = errs.ErrInvalidSession
	// ErrUndecodableToken is returned when an access token does not decode into claims.
	ErrUndecodableToken = errs.ErrInvalidToken
)

// Session is an access/refresh token pair with the access token's decoded claims.
// ExpiresAt is always derived from the exp claim.
type Session struct {
	accessToken  string
	refreshToken string
	claims       token.Claims
	issuedAt     time.Time
	expiresAt    time.Time
}

// New builds a Session from already decoded claims.
func New(accessToken, refreshToken string, claims token.Claims, issuedAt time.Time) (*Session, error) {
	if accessToken == "" {
		return nil, errors.Wrap(ErrInvalidSession, "[New] missing access token")
	}
	if !claims.Valid() {
		return nil, errors.Wrap(ErrInvalidSession, "[New] claims require exp after iat")
	}
	return &Session{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		claims:       claims,
		issuedAt:     time.UnixMilli(issuedAt.UnixMilli()),
		expiresAt:    time.UnixMilli(claims.ExpiresAtMillis()),
	}, nil
}

// FromTokens decodes accessToken and builds a Session issued at issuedAt.
func FromTokens(accessToken, refreshToken string, issuedAt time.Time) (*Session, error) {
	claims, ok := token.Decode(accessToken)
	if !ok {
		return nil, ErrUndecodableToken
	}
	return New(accessToken, refreshToken, claims, issuedAt)
}

func (s *Session) AccessToken() string {
	return s.accessToken
}

func (s *Session) RefreshToken() string {
	return s.refreshToken
}

func (s *Session) Claims() token.Claims {
	return s.claims
}

func (s *Session) IssuedAt() time.Time {
	return s.issuedAt
}

// ExpiresAt is exp * 1000 in milliseconds.
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

func (s *Session) ExpiresAtMillis() int64 {
	return s.expiresAt.UnixMilli()
}

// IsExpired reports whether now has reached the expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.UnixMilli() >= s.ExpiresAtMillis()
}

// OAuth2Token returns the session as a standard oauth2 token.
func (s *Session) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.accessToken,
		TokenType:    "Bearer",
		RefreshToken: s.refreshToken,
		Expiry:       s.expiresAt,
	}
}

type storedSession struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	Claims       *token.Claims `json:"claims"`
	IssuedAt     int64         `json:"issuedAt"`
	ExpiresAt    int64         `json:"expiresAt"`
}

// Encode serializes s for a Store. Times are milliseconds since the epoch.
func Encode(s *Session) ([]byte, error) {
	claims := s.claims
	return json.Marshal(storedSession{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		Claims:       &claims,
		IssuedAt:     s.issuedAt.UnixMilli(),
		ExpiresAt:    s.ExpiresAtMillis(),
	})
}

// Decode restores a Session written by Encode. The expiry is recomputed from the claims.
func Decode(data []byte) (*Session, error) {
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrapf(ErrInvalidSession, "[Decode] stored session: %v", err)
	}
	if stored.AccessToken == "" || stored.Claims == nil || stored.ExpiresAt == 0 {
		return nil, errors.Wrap(ErrInvalidSession, "[Decode] stored session is incomplete")
	}
	return New(stored.AccessToken, stored.RefreshToken, *stored.Claims, time.UnixMilli(stored.IssuedAt))
}
