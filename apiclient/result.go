package apiclient

import (
	"encoding/json"
	"errors"

	"github.com/jrsteele09/go-auth-client/apierrors"
)

// ErrNoData is returned by Result.Decode for a successful result without data.
var ErrNoData = errors.New("response has no data")

// Meta describes the exchange that produced a Result.
type Meta struct {
	RequestID  string `json:"requestId"`
	DurationMs int64  `json:"durationMs"`
	Status     int    `json:"status"`

	// Path and AccessToken describe the attempt behind the result. AccessToken is the
	// bearer credential that was sent, or "" when none was.
	Path        string `json:"-"`
	AccessToken string `json:"-"`
}

// Result is the uniform outcome of a request. Data is nil whenever Success is false, and
// Error is nil whenever Success is true.
type Result struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *apierrors.APIError `json:"error"`
	Meta    Meta                `json:"meta"`
}

// ErrorCode returns the error code of a failed result, or "".
func (r Result) ErrorCode() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

// Err returns the result's error as a Go error, or nil on success.
func (r Result) Err() error {
	if r.Success || r.Error == nil {
		return nil
	}
	return r.Error
}

// Decode unmarshals the result data into v.
func (r Result) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Data) == 0 {
		return ErrNoData
	}
	return json.Unmarshal(r.Data, v)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *wireError      `json:"error"`
}

type wireError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// normalize parses raw as the response envelope.
func (c *Client) normalize(raw []byte) Result {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		env = envelope{Error: &wireError{Code: apierrors.CodeInvalidJSON}}
	}

	if env.Success {
		return Result{Success: true, Data: nullable(env.Data)}
	}

	code := apierrors.CodeUnknown
	var message string
	details := map[string]any{}
	if env.Error != nil {
		if env.Error.Code != "" {
			code = env.Error.Code
		}
		message = env.Error.Message
		if env.Error.Details != nil {
			details = env.Error.Details
		}
	}
	if message == "" {
		message = c.catalog.MessageFor(code)
	}
	return Result{
		Success: false,
		Error:   &apierrors.APIError{Code: code, Message: message, Details: details},
	}
}

func nullable(data json.RawMessage) json.RawMessage {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return data
}
