// Package apitest provides an in-process fake of the auth API for tests: token issuance
// with refresh rotation and reuse detection, revoke, and a few resource endpoints.
package apitest

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var signingKey = []byte("apitest-signing-key")

// DefaultAccessTokenExpiry is the lifetime of tokens minted by the fake server.
const DefaultAccessTokenExpiry = 15 * time.Minute

// TokenClaims describes a token to mint.
type TokenClaims struct {
	UserID   string
	TenantID string
	Role     string
	IssuedAt time.Time
	Expiry   time.Time
}

// MintAccessToken signs an HS256 access token carrying the claims the client reads.
func MintAccessToken(c TokenClaims) string {
	claims := jwtlib.MapClaims{
		"sub":       c.UserID,
		"tenant_id": c.TenantID,
		"role":      c.Role,
		"iat":       c.IssuedAt.Unix(),
		"exp":       c.Expiry.Unix(),
		"jti":       uuid.New().String(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// MintExpiringAt mints a token for user-1 in tenant-1 expiring at exp.
func MintExpiringAt(exp time.Time) string {
	return MintAccessToken(TokenClaims{
		UserID:   "user-1",
		TenantID: "tenant-1",
		Role:     "user",
		IssuedAt: exp.Add(-DefaultAccessTokenExpiry),
		Expiry:   exp,
	})
}
