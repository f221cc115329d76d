package auth

import "errors"

var (
	ErrNoSession            = errors.New("no active session")
	ErrSessionCompromised   = errors.New("session compromised: refresh token reuse detected")
	ErrTokenDecode          = errors.New("failed to decode access token")
	ErrMissingData          = errors.New("response is missing token data")
	ErrUnsupportedTokenType = errors.New("unsupported token type")
)
