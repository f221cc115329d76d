package auth

// API paths of the auth endpoints, relative to the client base address.
const (
	TokenPath   = "/auth/token"
	RefreshPath = "/auth/refresh"
	RevokePath  = "/auth/revoke"
)

// DefaultRole is requested when an Identity has no role.
const DefaultRole = "user"

// Identity is the principal a session is requested for.
type Identity struct {
	UserID   string
	Role     string
	TenantID string // optional, the server assigns its default tenant when empty
}

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
}

// TokenResponse is the data of a successful /auth/token or /auth/refresh response.
type TokenResponse struct {
	// AccessToken is the short-lived JWT sent as "Authorization: Bearer <access_token>".
	// The client decodes its claims but never verifies its signature.
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque long-lived token exchanged at /auth/refresh.
	// Under rotation every refresh returns a new one and the previous one becomes invalid.
	RefreshToken string `json:"refresh_token"`

	// TokenType is expected to be "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds. Informational only: the
	// session expiry always comes from the token's exp claim.
	ExpiresIn int `json:"expires_in"`

	// Rotated is only present on refresh responses.
	Rotated *bool `json:"rotated,omitempty"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RevokeRequest is the body of POST /auth/revoke.
type RevokeRequest struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}
