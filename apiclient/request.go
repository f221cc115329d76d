package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/rs/zerolog"
)

// RequestOptions describes a single logical request.
type RequestOptions struct {
	Method    string            // defaults to GET
	Body      any               // JSON encoded when non-nil
	Headers   map[string]string // override computed headers, including Authorization
	RequestID string            // generated when empty
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) Result {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodGet})
}

// Post issues a POST request with body.
func (c *Client) Post(ctx context.Context, path string, body any) Result {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodPost, Body: body})
}

// Put issues a PUT request with body.
func (c *Client) Put(ctx context.Context, path string, body any) Result {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodPut, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) Result {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodDelete})
}

// Request performs the request, retrying transport failures and over_capacity responses
// up to the configured bound. It never panics on a failed exchange and always returns a
// Result.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) Result {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	if opts.RequestID == "" {
		opts.RequestID = c.newRequestID()
	}
	startedAt := c.nowTime()

	body, err := encodeBody(opts.Body)
	if err != nil {
		apiErr := apierrors.New(apierrors.CodeInvalidRequest)
		apiErr.Message = c.catalog.MessageFor(apierrors.CodeInvalidRequest)
		return c.failure(path, opts, startedAt, apiErr, err)
	}

	for attempt := 0; ; attempt++ {
		result, err := c.attempt(ctx, path, opts, body, startedAt)
		if err != nil {
			if attempt < c.retryCount && ctx.Err() == nil && c.backoff(ctx, attempt) == nil {
				continue
			}
			return c.failure(path, opts, startedAt, c.transportError(ctx, err), err)
		}

		if result.Meta.Status == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(result)
		}

		if result.ErrorCode() == apierrors.CodeOverCapacity && attempt < c.retryCount {
			if c.backoff(ctx, attempt) != nil {
				return result
			}
			continue
		}
		return result
	}
}

// backoff waits baseDelay * (attempt + 1).
func (c *Client) backoff(ctx context.Context, attempt int) error {
	return c.sleep(ctx, c.retryDelay*time.Duration(attempt+1))
}

// attempt performs one exchange. A non-nil error means the server was not reached or
// the response could not be read; any response that was read yields a Result.
func (c *Client) attempt(ctx context.Context, path string, opts RequestOptions, body []byte, startedAt time.Time) (Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, opts.Method, c.baseURL+path, reader)
	if err != nil {
		return Result{}, err
	}

	req.Header.Set(headerContentType, "application/json")
	req.Header.Set(headerRequestID, opts.RequestID)
	if token := c.accessToken(); token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}
	for name, value := range opts.Headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}

	requestID := resp.Header.Get(headerRequestID)
	if requestID == "" {
		requestID = opts.RequestID
	}

	bearer, _ := strings.CutPrefix(req.Header.Get(headerAuthorization), "Bearer ")

	result := c.normalize(raw)
	result.Meta = Meta{
		RequestID:   requestID,
		DurationMs:  c.since(startedAt),
		Status:      resp.StatusCode,
		Path:        path,
		AccessToken: bearer,
	}

	c.logger.Info().
		Str("path", path).
		Str("method", opts.Method).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Int64("duration_ms", result.Meta.DurationMs).
		Func(errorCodeField(result.ErrorCode())).
		Msg("api_request_completed")

	return result, nil
}

func (c *Client) transportError(ctx context.Context, err error) *apierrors.APIError {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		apiErr := apierrors.New(c.timeoutCode).WithDetail("reason", "timeout")
		apiErr.Message = c.catalog.MessageFor(c.timeoutCode)
		return apiErr
	}
	apiErr := apierrors.New(apierrors.CodeNetworkException)
	apiErr.Message = c.catalog.MessageFor(apierrors.CodeNetworkException)
	if ctx.Err() != nil {
		return apiErr.WithDetail("reason", "canceled")
	}
	return apiErr
}

// failure builds the Result for a request that produced no response.
func (c *Client) failure(path string, opts RequestOptions, startedAt time.Time, apiErr *apierrors.APIError, cause error) Result {
	durationMs := c.since(startedAt)
	c.logger.Warn().
		Str("path", path).
		Str("method", opts.Method).
		Str("request_id", opts.RequestID).
		Int64("duration_ms", durationMs).
		Str("error_code", apiErr.Code).
		AnErr("error", cause).
		Msg("api_request_exception")

	return Result{
		Success: false,
		Error:   apiErr,
		Meta: Meta{
			RequestID:  opts.RequestID,
			DurationMs: durationMs,
			Status:     0,
			Path:       path,
		},
	}
}

func (c *Client) since(startedAt time.Time) int64 {
	return c.nowTime().Sub(startedAt).Milliseconds()
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

func errorCodeField(code string) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		if code == "" {
			e.Interface("error_code", nil)
			return
		}
		e.Str("error_code", code)
	}
}
