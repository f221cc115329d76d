// Package apiclient issues requests to the JSON API with a per-attempt timeout, bounded
// retries, request correlation and normalization of every response into a Result.
package apiclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-Id"
	headerAuthorization = "Authorization"
)

// Doer executes a single HTTP exchange. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenAccessor returns the current access token, or "" when there is none.
type TokenAccessor func() string

// UnauthorizedHandler is called with every attempt result whose HTTP status is 401.
type UnauthorizedHandler func(Result)

// Client is safe for concurrent use. Its only shared inputs are the token accessor and
// the unauthorized handler supplied at construction.
type Client struct {
	baseURL        string
	httpClient     Doer
	timeout        time.Duration
	retryCount     int
	retryDelay     time.Duration
	timeoutCode    string
	logger         zerolog.Logger
	catalog        apierrors.Catalog
	accessToken    TokenAccessor
	onUnauthorized UnauthorizedHandler
	newRequestID   func() string
	sleep          func(ctx context.Context, d time.Duration) error
	nowTime        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for each attempt.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout bounds each network attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets the number of additional attempts and the linear backoff base delay.
func WithRetry(count int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if count >= 0 {
			c.retryCount = count
		}
		if baseDelay >= 0 {
			c.retryDelay = baseDelay
		}
	}
}

// WithTimeoutCode reports exhausted timeouts as "timeout" instead of "network_exception".
func WithTimeoutCode() Option {
	return func(c *Client) {
		c.timeoutCode = apierrors.CodeTimeout
	}
}

// WithLogger sets the logger for request events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCatalog sets the catalog used when the server omits an error message.
func WithCatalog(catalog apierrors.Catalog) Option {
	return func(c *Client) {
		c.catalog = catalog
	}
}

// WithTokenAccessor sets the source of the bearer credential.
func WithTokenAccessor(accessor TokenAccessor) Option {
	return func(c *Client) {
		if accessor != nil {
			c.accessToken = accessor
		}
	}
}

// WithUnauthorizedHandler sets the callback for 401 responses.
func WithUnauthorizedHandler(handler UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = handler
	}
}

// WithRequestIDGenerator replaces the correlation id generator.
func WithRequestIDGenerator(generate func() string) Option {
	return func(c *Client) {
		if generate != nil {
			c.newRequestID = generate
		}
	}
}

// WithSleep replaces the backoff wait (primarily for testing).
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) {
		if nowFunc != nil {
			c.nowTime = nowFunc
		}
	}
}

// WithConfig applies timeout and retry settings from the client config.
func WithConfig(cfg config.ClientConfig) Option {
	return func(c *Client) {
		WithTimeout(cfg.GetRequestTimeout())(c)
		WithRetry(cfg.GetRetryCount(), cfg.GetRetryDelay())(c)
	}
}

// New returns a Client for the API rooted at baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   http.DefaultClient,
		timeout:      config.DefaultRequestTimeout,
		retryCount:   config.DefaultRetryCount,
		retryDelay:   config.DefaultRetryDelay,
		timeoutCode:  apierrors.CodeNetworkException,
		logger:       log.Logger,
		catalog:      apierrors.Default(),
		accessToken:  func() string { return "" },
		newRequestID: NewRequestID,
		sleep:        sleepContext,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the address requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
