// Package auth manages the session lifecycle: login, refresh with rotation and reuse
// detection, revoke, and recovery of a persisted session.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/apierrors"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// sessionKey is the Store key of the persisted session.
const sessionKey = "session"

// Requester performs API requests. *apiclient.Client satisfies it.
type Requester interface {
	Request(ctx context.Context, path string, opts apiclient.RequestOptions) apiclient.Result
}

// Service orchestrates the session lifecycle against the auth endpoints.
type Service struct {
	client          Requester
	holder          *sessions.Holder
	store           sessions.Store
	logger          zerolog.Logger
	nowTime         func() time.Time
	compromiseCodes map[string]struct{}
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithStore sets where sessions are persisted. The default keeps them in memory.
func WithStore(store sessions.Store) ServiceOption {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		if nowFunc != nil {
			s.nowTime = nowFunc
		}
	}
}

// WithCompromiseCodes sets the refresh error codes that mean the session was stolen.
// The default is refresh_token_reuse.
func WithCompromiseCodes(codes ...string) ServiceOption {
	return func(s *Service) {
		s.compromiseCodes = make(map[string]struct{}, len(codes))
		for _, code := range codes {
			s.compromiseCodes[code] = struct{}{}
		}
	}
}

// NewService creates a Service. The holder is the same one whose AccessToken feeds the
// client's token accessor.
func NewService(client Requester, holder *sessions.Holder, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	if holder == nil {
		return nil, errors.New("[NewService] session holder is required")
	}

	s := &Service{
		client:          client,
		holder:          holder,
		store:           sessions.NewMemoryStore(),
		logger:          log.Logger,
		nowTime:         time.Now,
		compromiseCodes: map[string]struct{}{apierrors.CodeRefreshTokenReuse: {}},
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login requests a token pair for identity and makes it the current session.
func (s *Service) Login(ctx context.Context, identity Identity) (*sessions.Session, error) {
	role := identity.Role
	if role == "" {
		role = DefaultRole
	}

	result := s.client.Request(ctx, TokenPath, apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   TokenRequest{UserID: identity.UserID, Role: role, TenantID: identity.TenantID},
	})
	if !result.Success {
		return nil, result.Err()
	}

	resp, err := decodeTokenResponse(result)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] invalid token response")
	}

	session, err := sessions.FromTokens(resp.AccessToken, resp.RefreshToken, s.nowTime())
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %w", ErrTokenDecode, err), "[Login]")
	}

	s.holder.Set(session)
	s.persist(ctx, session)
	return session, nil
}

// Refresh exchanges the refresh token of current (or of the held session when current
// is nil) for a new session. A compromise code tears the whole session down and returns
// ErrSessionCompromised. Any other failure leaves the held session untouched.
func (s *Service) Refresh(ctx context.Context, current *sessions.Session) (*sessions.Session, error) {
	if current == nil {
		current = s.holder.Current()
	}
	if current == nil {
		return nil, ErrNoSession
	}
	if current.RefreshToken() == "" {
		return nil, errors.Wrap(ErrNoSession, "[Refresh] session has no refresh token")
	}

	result := s.client.Request(ctx, RefreshPath, apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   RefreshRequest{RefreshToken: current.RefreshToken()},
	})
	if !result.Success {
		if s.isCompromise(result.ErrorCode()) {
			s.teardown(ctx, current, result)
			return nil, errors.Wrap(fmt.Errorf("%w: %w", ErrSessionCompromised, result.Error), "[Refresh]")
		}
		return nil, result.Err()
	}

	resp, err := decodeTokenResponse(result)
	if err != nil {
		return nil, errors.Wrap(err, "[Refresh] invalid token response")
	}

	// A returned refresh token always replaces the old one, whatever "rotated" says.
	refreshToken := resp.RefreshToken
	if refreshToken == "" {
		refreshToken = current.RefreshToken()
	}

	next, err := sessions.FromTokens(resp.AccessToken, refreshToken, s.nowTime())
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %w", ErrTokenDecode, err), "[Refresh]")
	}

	s.holder.Set(next)
	s.persist(ctx, next)
	return next, nil
}

// Revoke invalidates every server-side session of the identity. The local session is
// cleared whatever the server answers; the server's error is still returned.
func (s *Service) Revoke(ctx context.Context, userID, tenantID string) error {
	result := s.client.Request(ctx, RevokePath, apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   RevokeRequest{UserID: userID, TenantID: tenantID},
	})
	s.Logout(ctx)

	if !result.Success {
		s.logger.Warn().
			Str("user_id", userID).
			Str("tenant_id", tenantID).
			Str("request_id", result.Meta.RequestID).
			Str("error_code", result.ErrorCode()).
			Msg("session_revoke_failed")
		return result.Err()
	}
	return nil
}

// RevokeCurrent revokes the identity of the held session.
func (s *Service) RevokeCurrent(ctx context.Context) error {
	current := s.holder.Current()
	if current == nil {
		return ErrNoSession
	}
	claims := current.Claims()
	return s.Revoke(ctx, claims.UserID(), claims.TenantID)
}

// Logout drops the local session and its persisted copy.
func (s *Service) Logout(ctx context.Context) {
	s.holder.Clear()
	if err := s.store.Delete(ctx, sessionKey); err != nil {
		s.logger.Warn().Err(err).Msg("session_clear_failed")
	}
}

// HandleUnauthorized is an apiclient.UnauthorizedHandler. It drops the held session when
// a 401 answered a request made with that session's access token. A 401 for a token that
// has since been replaced is ignored, and so is a 401 from the refresh endpoint, whose
// outcome Refresh settles itself.
func (s *Service) HandleUnauthorized(result apiclient.Result) {
	if result.Meta.Path == RefreshPath {
		return
	}
	current := s.holder.Current()
	if current == nil || result.Meta.AccessToken == "" || result.Meta.AccessToken != current.AccessToken() {
		return
	}
	if !s.holder.CompareAndClear(current) {
		return
	}

	s.logger.Info().
		Str("request_id", result.Meta.RequestID).
		Str("path", result.Meta.Path).
		Str("error_code", result.ErrorCode()).
		Msg("session_unauthorized")
	if err := s.store.Delete(context.Background(), sessionKey); err != nil {
		s.logger.Warn().Err(err).Msg("session_clear_failed")
	}
}

// Restore makes the persisted session current. It returns ErrNoSession when nothing is
// persisted or the store cannot be read, and discards persisted data that is not a
// valid session.
func (s *Service) Restore(ctx context.Context) (*sessions.Session, error) {
	raw, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		if !errors.Is(err, sessions.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("session_restore_failed")
		}
		return nil, ErrNoSession
	}

	session, err := sessions.Decode(raw)
	if err != nil {
		if delErr := s.store.Delete(ctx, sessionKey); delErr != nil {
			s.logger.Warn().Err(delErr).Msg("session_clear_failed")
		}
		return nil, err
	}

	s.holder.Set(session)
	return session, nil
}

// Current returns the held session, or nil.
func (s *Service) Current() *sessions.Session {
	return s.holder.Current()
}

// Info returns the display projection of the held session.
func (s *Service) Info() (sessions.Info, bool) {
	current := s.holder.Current()
	if current == nil {
		return sessions.Info{}, false
	}
	return current.Info(s.nowTime()), true
}

// IsAuthenticated reports whether a session is held and not expired.
func (s *Service) IsAuthenticated() bool {
	info, ok := s.Info()
	return ok && info.Status == sessions.StatusActive
}

func (s *Service) isCompromise(code string) bool {
	_, ok := s.compromiseCodes[code]
	return ok
}

func (s *Service) teardown(ctx context.Context, current *sessions.Session, result apiclient.Result) {
	s.logger.Error().
		Str("user_id", current.Claims().UserID()).
		Str("tenant_id", current.Claims().TenantID).
		Str("request_id", result.Meta.RequestID).
		Str("error_code", result.ErrorCode()).
		Msg("session_compromised")
	s.Logout(ctx)
}

// persist writes session to the store. Failures only degrade to memory-only operation.
func (s *Service) persist(ctx context.Context, session *sessions.Session) {
	raw, err := sessions.Encode(session)
	if err == nil {
		err = s.store.Set(ctx, sessionKey, raw)
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("session_persist_failed")
	}
}
