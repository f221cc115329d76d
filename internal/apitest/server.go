package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
)

// Failure is a canned error response.
type Failure struct {
	Status  int
	Code    string
	Message string
}

// Server is a fake auth API. Paths are mounted under /api/v1.
type Server struct {
	*httptest.Server
	Router *mux.Router

	refresh   *refreshTokens
	rotate    bool
	mu        sync.Mutex
	failures  map[string][]Failure
	calls     map[string]*int32
	lastAuth  atomic.Value
	issueBody func(userID, tenantID, role string) map[string]any
}

// Option configures a Server.
type Option func(*Server)

// WithoutRotation makes /auth/refresh return the presented refresh token.
func WithoutRotation() Option {
	return func(s *Server) {
		s.rotate = false
	}
}

// WithIssueBody replaces the token issuance payload.
func WithIssueBody(body func(userID, tenantID, role string) map[string]any) Option {
	return func(s *Server) {
		s.issueBody = body
	}
}

// NewServer starts a fake API closed at test cleanup.
func NewServer(t *testing.T, options ...Option) *Server {
	t.Helper()

	s := &Server{
		Router:   mux.NewRouter(),
		refresh:  newRefreshTokens(),
		rotate:   true,
		failures: make(map[string][]Failure),
		calls:    make(map[string]*int32),
	}
	for _, opt := range options {
		opt(s)
	}

	api := s.Router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.countingMiddleware)
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/auth/token", s.issue).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.refreshToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/revoke", s.revoke).Methods(http.MethodPost)
	api.HandleFunc("/sources", s.listSources).Methods(http.MethodGet)
	api.HandleFunc("/source/{id}", s.getSource).Methods(http.MethodGet)
	api.HandleFunc("/{action:upload|download-from-url|extract|video-to-text|ai-assist}", s.echo).Methods(http.MethodPost)

	s.Server = httptest.NewServer(s.Router)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the client base address for this server.
func (s *Server) BaseURL() string {
	return s.URL + "/api/v1"
}

// FailNext queues a failure for the next request to path (for example "/auth/refresh").
func (s *Server) FailNext(path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], f)
}

// Calls returns how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.calls[path]; ok {
		return int(atomic.LoadInt32(c))
	}
	return 0
}

// LastAuthorization returns the Authorization header of the most recent request.
func (s *Server) LastAuthorization() string {
	v, _ := s.lastAuth.Load().(string)
	return v
}

// IssuePair issues a token pair directly, bypassing HTTP.
func (s *Server) IssuePair(userID, tenantID, role string) (access, refresh string, err error) {
	now := NowTimeFunc()
	access = MintAccessToken(TokenClaims{UserID: userID, TenantID: tenantID, Role: role, IssuedAt: now, Expiry: now.Add(DefaultAccessTokenExpiry)})
	refresh, err = s.refresh.Create(userID, tenantID, role)
	return access, refresh, err
}

func (s *Server) countingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[len("/api/v1"):]
		s.lastAuth.Store(r.Header.Get("Authorization"))

		s.mu.Lock()
		if _, ok := s.calls[path]; !ok {
			s.calls[path] = new(int32)
		}
		atomic.AddInt32(s.calls[path], 1)
		var failure *Failure
		if queued := s.failures[path]; len(queued) > 0 {
			failure = &queued[0]
			s.failures[path] = queued[1:]
		}
		s.mu.Unlock()

		if id := r.Header.Get("X-Request-Id"); id != "" {
			w.Header().Set("X-Request-Id", id)
		}
		if failure != nil {
			writeFailure(w, failure.Status, failure.Code, failure.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}

type issueRequest struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
}

func (s *Server) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeFailure(w, http.StatusUnprocessableEntity, "validation_error", "user_id is required")
		return
	}
	if req.TenantID == "" {
		req.TenantID = "public"
	}
	if s.issueBody != nil {
		writeOK(w, s.issueBody(req.UserID, req.TenantID, req.Role))
		return
	}
	access, refresh, err := s.IssuePair(req.UserID, req.TenantID, req.Role)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeOK(w, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    int(DefaultAccessTokenExpiry.Seconds()),
	})
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeFailure(w, http.StatusUnprocessableEntity, "validation_error", "refresh_token is required")
		return
	}

	rt, err := s.refresh.Use(req.RefreshToken, s.rotate)
	switch {
	case errors.Is(err, ErrRefreshReused):
		writeFailure(w, http.StatusUnauthorized, "refresh_token_reuse", "Refresh token reuse detected")
		return
	case err != nil:
		writeFailure(w, http.StatusUnauthorized, "auth_refresh_invalid", "Invalid refresh token")
		return
	}

	now := NowTimeFunc()
	access := MintAccessToken(TokenClaims{UserID: rt.UserID, TenantID: rt.TenantID, Role: rt.Role, IssuedAt: now, Expiry: now.Add(DefaultAccessTokenExpiry)})
	next := req.RefreshToken
	if s.rotate {
		if next, err = s.refresh.Create(rt.UserID, rt.TenantID, rt.Role); err != nil {
			writeFailure(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
	}
	writeOK(w, map[string]any{
		"access_token":  access,
		"refresh_token": next,
		"token_type":    "bearer",
		"expires_in":    int(DefaultAccessTokenExpiry.Seconds()),
		"rotated":       s.rotate,
	})
}

func (s *Server) revoke(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"user_id"`
		TenantID string `json:"tenant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeFailure(w, http.StatusUnprocessableEntity, "validation_error", "user_id is required")
		return
	}
	writeOK(w, map[string]int{"revoked": s.refresh.Revoke(req.UserID, req.TenantID)})
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]any{"sources": []map[string]string{{"file_id": "f1", "name": "doc.pdf"}}})
}

func (s *Server) getSource(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id != "f1" {
		writeFailure(w, http.StatusNotFound, "file_not_found", "")
		return
	}
	writeOK(w, map[string]string{"file_id": id, "name": "doc.pdf"})
}

// echo returns the request body under the action name.
func (s *Server) echo(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, http.StatusUnprocessableEntity, "validation_error", "invalid body")
		return
	}
	writeOK(w, map[string]any{"action": mux.Vars(r)["action"], "received": body})
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data, "error": nil})
}

func writeFailure(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"data":    nil,
		"error":   map[string]any{"code": code, "message": message, "details": map[string]any{}},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
