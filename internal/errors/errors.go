package errors

import "errors"

// Common error types shared by the client packages
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidSession = errors.New("invalid session")
	ErrNotFound       = errors.New("not found")
)
