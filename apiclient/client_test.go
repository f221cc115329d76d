package apiclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func ok(data any) map[string]any {
	return map[string]any{"success": true, "data": data, "error": nil}
}

func fail(code, message string) map[string]any {
	return map[string]any{
		"success": false,
		"data":    nil,
		"error":   map[string]any{"code": code, "message": message, "details": map[string]any{}},
	}
}

func newServer(t *testing.T, router *mux.Router) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func noSleep(context.Context, time.Duration) error { return nil }

func newClient(baseURL string, options ...apiclient.Option) *apiclient.Client {
	defaults := []apiclient.Option{
		apiclient.WithLogger(zerolog.Nop()),
		apiclient.WithSleep(noSleep),
	}
	return apiclient.New(baseURL, append(defaults, options...)...)
}

func TestRequestPrefersServerRequestID(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("X-Request-Id", "srv-123")
		writeEnvelope(t, w, http.StatusOK, ok(map[string]any{"status": "ok"}))
	}).Methods(http.MethodGet)
	srv := newServer(t, router)

	result := newClient(srv.URL).Get(context.Background(), "/health")

	require.True(t, result.Success)
	require.Nil(t, result.Error)
	require.Equal(t, "srv-123", result.Meta.RequestID)
	require.Equal(t, http.StatusOK, result.Meta.Status)

	var data struct {
		Status string `json:"status"`
	}
	require.NoError(t, result.Decode(&data))
	require.Equal(t, "ok", data.Status)
}

func TestRequestEchoesClientRequestID(t *testing.T) {
	var seen string
	router := mux.NewRouter()
	router.HandleFunc("/sources", func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-Id")
		writeEnvelope(t, w, http.StatusOK, ok([]string{}))
	})
	srv := newServer(t, router)

	result := newClient(srv.URL).Request(context.Background(), "/sources", apiclient.RequestOptions{RequestID: "caller-1"})
	require.Equal(t, "caller-1", seen)
	require.Equal(t, "caller-1", result.Meta.RequestID)

	generated := newClient(srv.URL, apiclient.WithRequestIDGenerator(func() string { return "gen-1" })).Get(context.Background(), "/sources")
	require.Equal(t, "gen-1", seen)
	require.Equal(t, "gen-1", generated.Meta.RequestID)
}

func TestRequestInjectsBearerToken(t *testing.T) {
	var auth string
	router := mux.NewRouter()
	router.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeEnvelope(t, w, http.StatusOK, ok(nil))
	})
	srv := newServer(t, router)

	client := newClient(srv.URL, apiclient.WithTokenAccessor(func() string { return "abc123" }))
	result := client.Get(context.Background(), "/projects")
	require.Equal(t, "Bearer abc123", auth)
	require.Equal(t, "abc123", result.Meta.AccessToken)
	require.Equal(t, "/projects", result.Meta.Path)

	result = client.Request(context.Background(), "/projects", apiclient.RequestOptions{
		Headers: map[string]string{"Authorization": "Bearer override"},
	})
	require.Equal(t, "Bearer override", auth)
	require.Equal(t, "override", result.Meta.AccessToken)

	result = newClient(srv.URL).Get(context.Background(), "/projects")
	require.Empty(t, auth)
	require.Empty(t, result.Meta.AccessToken)
}

func TestRequestPostsJSONBody(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/extract", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeEnvelope(t, w, http.StatusOK, ok(body))
	}).Methods(http.MethodPost)
	srv := newServer(t, router)

	result := newClient(srv.URL).Post(context.Background(), "/extract", map[string]string{"file_id": "f1"})

	var echoed map[string]string
	require.NoError(t, result.Decode(&echoed))
	require.Equal(t, "f1", echoed["file_id"])
}

func TestUnauthorizedCallbackFiresOnce(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusUnauthorized, fail("auth_missing", "auth"))
	})
	srv := newServer(t, router)

	var calls int32
	client := newClient(srv.URL, apiclient.WithUnauthorizedHandler(func(r apiclient.Result) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.StatusUnauthorized, r.Meta.Status)
	}))

	result := client.Get(context.Background(), "/projects")
	require.False(t, result.Success)
	require.Equal(t, http.StatusUnauthorized, result.Meta.Status)
	require.Equal(t, "auth_missing", result.ErrorCode())
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUnauthorizedCallbackFiresBeforeRetry(t *testing.T) {
	var attempts int32
	router := mux.NewRouter()
	router.HandleFunc("/busy", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			writeEnvelope(t, w, http.StatusUnauthorized, fail(apierrors.CodeOverCapacity, "busy"))
			return
		}
		writeEnvelope(t, w, http.StatusOK, ok(nil))
	})
	srv := newServer(t, router)

	var calls int32
	client := newClient(srv.URL, apiclient.WithUnauthorizedHandler(func(apiclient.Result) {
		atomic.AddInt32(&calls, 1)
	}))

	result := client.Get(context.Background(), "/busy")
	require.True(t, result.Success)
	require.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOverCapacityIsRetried(t *testing.T) {
	var attempts int32
	router := mux.NewRouter()
	router.HandleFunc("/sources", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			writeEnvelope(t, w, http.StatusServiceUnavailable, fail(apierrors.CodeOverCapacity, "busy"))
			return
		}
		writeEnvelope(t, w, http.StatusOK, ok(map[string]bool{"retry": true}))
	})
	srv := newServer(t, router)

	result := newClient(srv.URL, apiclient.WithRetry(1, time.Millisecond)).Get(context.Background(), "/sources")

	require.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	require.True(t, result.Success)
	var data map[string]bool
	require.NoError(t, result.Decode(&data))
	require.True(t, data["retry"])
}

func TestOverCapacityExhausted(t *testing.T) {
	var attempts int32
	router := mux.NewRouter()
	router.HandleFunc("/sources", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		writeEnvelope(t, w, http.StatusServiceUnavailable, fail(apierrors.CodeOverCapacity, "busy"))
	})
	srv := newServer(t, router)

	result := newClient(srv.URL, apiclient.WithRetry(1, 0)).Get(context.Background(), "/sources")

	require.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	require.False(t, result.Success)
	require.Equal(t, apierrors.CodeOverCapacity, result.ErrorCode())
	require.Equal(t, http.StatusServiceUnavailable, result.Meta.Status)
}

func TestDomainErrorsAreTerminal(t *testing.T) {
	var attempts int32
	router := mux.NewRouter()
	router.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		writeEnvelope(t, w, http.StatusUnprocessableEntity, fail(apierrors.CodeValidation, "bad input"))
	})
	srv := newServer(t, router)

	result := newClient(srv.URL, apiclient.WithRetry(3, 0)).Post(context.Background(), "/upload", map[string]string{})

	require.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	require.Equal(t, apierrors.CodeValidation, result.ErrorCode())
	require.Equal(t, "bad input", result.Error.Message)
	require.Nil(t, result.Data)
}

func TestTransportExceptionOnFinalAttempt(t *testing.T) {
	var attempts int32
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("connection refused")
	})

	result := newClient("http://api.invalid", apiclient.WithHTTPClient(doer), apiclient.WithRequestIDGenerator(func() string { return "cli-1" })).
		Get(context.Background(), "/health")

	require.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	require.False(t, result.Success)
	require.Nil(t, result.Data)
	require.Equal(t, apierrors.CodeNetworkException, result.ErrorCode())
	require.Equal(t, apierrors.MessageFor(apierrors.CodeNetworkException), result.Error.Message)
	require.Equal(t, 0, result.Meta.Status)
	require.Equal(t, "cli-1", result.Meta.RequestID)
}

func TestTransportExceptionThenSuccess(t *testing.T) {
	var attempts int32
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, ok("up"))
	})
	srv := newServer(t, router)

	doer := doerFunc(func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return nil, errors.New("reset by peer")
		}
		return http.DefaultClient.Do(req)
	})

	result := newClient(srv.URL, apiclient.WithHTTPClient(doer)).Get(context.Background(), "/health")
	require.True(t, result.Success)
	require.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestLinearBackoff(t *testing.T) {
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("down")
	})
	var waits []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	newClient("http://api.invalid",
		apiclient.WithHTTPClient(doer),
		apiclient.WithRetry(3, 10*time.Millisecond),
		apiclient.WithSleep(sleep),
	).Get(context.Background(), "/health")

	require.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}, waits)
}

func TestAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	router := mux.NewRouter()
	router.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	srv := newServer(t, router)
	t.Cleanup(func() { close(release) })

	result := newClient(srv.URL, apiclient.WithTimeout(20*time.Millisecond), apiclient.WithRetry(0, 0)).
		Get(context.Background(), "/slow")
	require.Equal(t, apierrors.CodeNetworkException, result.ErrorCode())
	require.Equal(t, "timeout", result.Error.Details["reason"])
	require.Equal(t, 0, result.Meta.Status)

	strict := newClient(srv.URL, apiclient.WithTimeout(20*time.Millisecond), apiclient.WithRetry(0, 0), apiclient.WithTimeoutCode()).
		Get(context.Background(), "/slow")
	require.Equal(t, apierrors.CodeTimeout, strict.ErrorCode())
}

func TestCanceledContextStopsRetrying(t *testing.T) {
	var attempts int32
	ctx, cancel := context.WithCancel(context.Background())
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		cancel()
		return nil, context.Canceled
	})

	result := newClient("http://api.invalid", apiclient.WithHTTPClient(doer), apiclient.WithRetry(3, 0)).Get(ctx, "/health")

	require.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	require.Equal(t, apierrors.CodeNetworkException, result.ErrorCode())
	require.Equal(t, "canceled", result.Error.Details["reason"])
}

func TestInvalidJSONResponse(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	srv := newServer(t, router)

	result := newClient(srv.URL).Get(context.Background(), "/health")

	require.False(t, result.Success)
	require.Equal(t, apierrors.CodeInvalidJSON, result.ErrorCode())
	require.Equal(t, apierrors.MessageFor(apierrors.CodeInvalidJSON), result.Error.Message)
	require.Equal(t, http.StatusBadGateway, result.Meta.Status)
}

func TestEnvelopeNormalization(t *testing.T) {
	tests := []struct {
		name        string
		payload     any
		wantSuccess bool
		wantData    bool
		wantCode    string
		wantMessage string
	}{
		{name: "success without data", payload: map[string]any{"success": true}, wantSuccess: true},
		{name: "success with null data", payload: ok(nil), wantSuccess: true},
		{
			name:        "failure drops data",
			payload:     map[string]any{"success": false, "data": map[string]int{"x": 1}, "error": map[string]any{"code": "conflict", "message": "taken"}},
			wantCode:    "conflict",
			wantMessage: "taken",
		},
		{
			name:        "failure without code",
			payload:     map[string]any{"success": false},
			wantCode:    apierrors.CodeUnknown,
			wantMessage: apierrors.MessageFor(apierrors.CodeUnknown),
		},
		{
			name:        "failure without message",
			payload:     map[string]any{"success": false, "error": map[string]any{"code": apierrors.CodeValidation}},
			wantCode:    apierrors.CodeValidation,
			wantMessage: apierrors.MessageFor(apierrors.CodeValidation),
		},
		{
			name:        "unknown code keeps server message",
			payload:     fail("quota_exceeded", "Quota exceeded"),
			wantCode:    "quota_exceeded",
			wantMessage: "Quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := mux.NewRouter()
			router.HandleFunc("/r", func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(t, w, http.StatusOK, tt.payload)
			})
			srv := newServer(t, router)

			result := newClient(srv.URL).Get(context.Background(), "/r")
			require.Equal(t, tt.wantSuccess, result.Success)
			require.Equal(t, tt.wantData, result.Data != nil)
			if tt.wantSuccess {
				require.Nil(t, result.Error)
				return
			}
			require.Nil(t, result.Data)
			require.Equal(t, tt.wantCode, result.ErrorCode())
			require.Equal(t, tt.wantMessage, result.Error.Message)
			require.NotNil(t, result.Error.Details)
		})
	}
}

func TestDecodeWithoutData(t *testing.T) {
	result := apiclient.Result{Success: true}
	require.ErrorIs(t, result.Decode(&struct{}{}), apiclient.ErrNoData)

	failed := apiclient.Result{Error: apierrors.New(apierrors.CodeNotFound)}
	require.True(t, apierrors.HasCode(failed.Decode(&struct{}{}), apierrors.CodeNotFound))
}

func TestUnencodableBodyIsNotSent(t *testing.T) {
	var attempts int32
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("unreachable")
	})

	result := newClient("http://api.invalid", apiclient.WithHTTPClient(doer)).
		Post(context.Background(), "/upload", map[string]any{"ch": make(chan int)})

	require.Zero(t, atomic.LoadInt32(&attempts))
	require.Equal(t, apierrors.CodeInvalidRequest, result.ErrorCode())
	require.Equal(t, apierrors.Default().MessageFor(apierrors.CodeInvalidRequest), result.Error.Message)
}

func TestUnencodableBodyUsesClientCatalog(t *testing.T) {
	french := apierrors.French()
	result := newClient("http://api.invalid", apiclient.WithCatalog(french)).
		Post(context.Background(), "/upload", map[string]any{"ch": make(chan int)})

	require.Equal(t, apierrors.CodeInvalidRequest, result.ErrorCode())
	require.Equal(t, french.MessageFor(apierrors.CodeInvalidRequest), result.Error.Message)
	require.NotEqual(t, apierrors.Default().MessageFor(apierrors.CodeInvalidRequest), result.Error.Message)
}

func TestRequestLogging(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusNotFound, fail(apierrors.CodeNotFound, "nope"))
	})
	srv := newServer(t, router)

	var buf bytes.Buffer
	client := newClient(srv.URL, apiclient.WithLogger(zerolog.New(&buf)), apiclient.WithRequestIDGenerator(func() string { return "log-1" }))
	client.Get(context.Background(), "/missing")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	require.Equal(t, "info", event["level"])
	require.Equal(t, "api_request_completed", event["message"])
	require.Equal(t, "/missing", event["path"])
	require.Equal(t, "GET", event["method"])
	require.Equal(t, "log-1", event["request_id"])
	require.Equal(t, float64(http.StatusNotFound), event["status"])
	require.Equal(t, apierrors.CodeNotFound, event["error_code"])
	require.Contains(t, event, "duration_ms")
}

func TestExceptionLogging(t *testing.T) {
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("down")
	})

	var buf bytes.Buffer
	newClient("http://api.invalid", apiclient.WithHTTPClient(doer), apiclient.WithRetry(0, 0), apiclient.WithLogger(zerolog.New(&buf))).
		Get(context.Background(), "/health")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	require.Equal(t, "warn", event["level"])
	require.Equal(t, "api_request_exception", event["message"])
	require.Equal(t, apierrors.CodeNetworkException, event["error_code"])
	require.Equal(t, "down", event["error"])
}

func TestSuccessLogHasNullErrorCode(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, ok(nil))
	})
	srv := newServer(t, router)

	var buf bytes.Buffer
	newClient(srv.URL, apiclient.WithLogger(zerolog.New(&buf))).Get(context.Background(), "/health")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	require.Contains(t, event, "error_code")
	require.Nil(t, event["error_code"])
}

func TestNewRequestIDIsUnique(t *testing.T) {
	a, b := apiclient.NewRequestID(), apiclient.NewRequestID()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
