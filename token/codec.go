// Package token decodes access tokens into claims without verifying signatures.
// Verification is the issuing server's responsibility; nothing here establishes trust.
package token

import (
	"encoding/json"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// segmentDecoder decodes base64url segments, restoring stripped padding.
var segmentDecoder = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// Claims are the access token claims the client reads. Exp and Iat are in seconds.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwtlib.RegisteredClaims
}

// UserID returns the subject claim.
func (c Claims) UserID() string {
	return c.Subject
}

// Exp returns the expiry claim in seconds since the epoch.
func (c Claims) Exp() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}

// Iat returns the issued-at claim in seconds since the epoch.
func (c Claims) Iat() int64 {
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.Unix()
}

// ExpiresAtMillis returns exp * 1000.
func (c Claims) ExpiresAtMillis() int64 {
	return c.Exp() * 1000
}

// Valid reports whether the claims carry an expiry later than their issue time.
func (c Claims) Valid() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.IssuedAt == nil || c.Exp() > c.Iat()
}

// Decode parses a header.payload.signature token and returns its payload claims. Only
// the payload segment is decoded. It returns false for any structural failure.
func Decode(raw string) (Claims, bool) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Claims{}, false
	}

	payload, err := segmentDecoder.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, false
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, false
	}
	if !claims.Valid() {
		return Claims{}, false
	}
	return claims, true
}

// IsExpired reports whether the token's exp lies at or before now. Tokens that do not
// decode are expired.
func IsExpired(raw string) bool {
	claims, ok := Decode(raw)
	if !ok {
		return true
	}
	return claims.Exp() <= NowTimeFunc().Unix()
}

// ExpirationMillis returns the token's expiry in milliseconds since the epoch.
func ExpirationMillis(raw string) (int64, bool) {
	claims, ok := Decode(raw)
	if !ok {
		return 0, false
	}
	return claims.ExpiresAtMillis(), true
}
