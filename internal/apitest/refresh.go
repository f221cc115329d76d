package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrRefreshInvalid = errors.New("invalid refresh token")
	ErrRefreshReused  = errors.New("refresh token reused")
)

const refreshTokenLength = 32

type storedRefreshToken struct {
	Token    string
	UserID   string
	TenantID string
	Role     string
	Rotated  bool
}

// refreshTokens issues opaque refresh tokens and rotates them on every use. Presenting
// a rotated-out token revokes every token of that user.
type refreshTokens struct {
	mu     sync.Mutex
	tokens map[string]*storedRefreshToken
}

func newRefreshTokens() *refreshTokens {
	return &refreshTokens{tokens: make(map[string]*storedRefreshToken)}
}

func (r *refreshTokens) Create(userID, tenantID, role string) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	tokenStr := hex.EncodeToString(tokenBytes)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[tokenStr] = &storedRefreshToken{Token: tokenStr, UserID: userID, TenantID: tenantID, Role: role}
	return tokenStr, nil
}

// Use returns the metadata of token for issuing a new access token. With consume set
// the token is rotated out and any later presentation counts as reuse.
func (r *refreshTokens) Use(token string, consume bool) (storedRefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[token]
	if !ok {
		return storedRefreshToken{}, ErrRefreshInvalid
	}
	if rt.Rotated {
		r.revokeLocked(rt.UserID, rt.TenantID)
		return storedRefreshToken{}, ErrRefreshReused
	}
	rt.Rotated = consume
	return *rt, nil
}

// Revoke removes every token of the user and returns how many were removed.
func (r *refreshTokens) Revoke(userID, tenantID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revokeLocked(userID, tenantID)
}

func (r *refreshTokens) revokeLocked(userID, tenantID string) int {
	revoked := 0
	for token, rt := range r.tokens {
		if rt.UserID == userID && rt.TenantID == tenantID {
			delete(r.tokens, token)
			revoked++
		}
	}
	return revoked
}
