package apierrors

import (
	"errors"
	"fmt"
)

// APIError is the structured error carried by the response envelope.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

var _ error = (*APIError)(nil)

// New returns an APIError with the catalog message for code.
func New(code string) *APIError {
	return &APIError{Code: code, Message: MessageFor(code), Details: map[string]any{}}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail returns a copy of e with key set in its details.
func (e *APIError) WithDetail(key string, value any) *APIError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &APIError{Code: e.Code, Message: e.Message, Details: details}
}

// CodeOf returns the code of the first APIError in err's chain, or "".
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// HasCode reports whether err carries an APIError with the given code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
