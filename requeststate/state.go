// Package requeststate maps API results onto the states presentation code renders:
// idle, loading, success, error and over_capacity.
package requeststate

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/apierrors"
)

type Status string

const (
	StatusIdle         Status = "idle"
	StatusLoading      Status = "loading"
	StatusSuccess      Status = "success"
	StatusError        Status = "error"
	StatusOverCapacity Status = "over_capacity"
)

// Terminal reports whether s ends a request.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError || s == StatusOverCapacity
}

// CanTransition reports whether a machine in s may move to next. A terminal state only
// leads back to idle, which starts the next request.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusIdle:
		return next == StatusLoading
	case StatusLoading:
		return next.Terminal()
	case StatusSuccess, StatusError, StatusOverCapacity:
		return next == StatusIdle
	}
	return false
}

// State is a snapshot of a request as seen by presentation code.
type State struct {
	Status     Status              `json:"status"`
	Data       json.RawMessage     `json:"data"`
	Error      *apierrors.APIError `json:"error"`
	RequestID  string              `json:"requestId"`
	DurationMs int64               `json:"durationMs"`
}

// RequestFunc performs one logical request, retries included.
type RequestFunc func(ctx context.Context) apiclient.Result

// Initial returns the idle state.
func Initial() State {
	return State{Status: StatusIdle}
}

// Resolve maps a final result to its terminal state.
func Resolve(result apiclient.Result) State {
	state := State{
		RequestID:  result.Meta.RequestID,
		DurationMs: result.Meta.DurationMs,
	}
	switch {
	case result.Success:
		state.Status = StatusSuccess
		state.Data = result.Data
	case result.ErrorCode() == apierrors.CodeOverCapacity:
		state.Status = StatusOverCapacity
		state.Error = result.Error
	default:
		state.Status = StatusError
		state.Error = result.Error
	}
	return state
}

// Run performs fn and returns the loading state entered before it and the terminal
// state it resolved to.
func Run(ctx context.Context, fn RequestFunc) (loading, final State) {
	loading = State{Status: StatusLoading}
	return loading, Resolve(fn(ctx))
}
