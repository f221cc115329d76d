package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource returns an oauth2.TokenSource over the held session that refreshes it
// once expired. It suits plain net/http clients built with oauth2.NewClient. Do not use
// it as the token accessor of the client this Service refreshes through.
func (s *Service) TokenSource(ctx context.Context) oauth2.TokenSource {
	var initial *oauth2.Token
	if current := s.holder.Current(); current != nil {
		initial = current.OAuth2Token()
	}
	return oauth2.ReuseTokenSource(initial, refreshingSource{ctx: ctx, service: s})
}

type refreshingSource struct {
	ctx     context.Context
	service *Service
}

func (r refreshingSource) Token() (*oauth2.Token, error) {
	current := r.service.holder.Current()
	if current == nil {
		return nil, ErrNoSession
	}
	if tok := current.OAuth2Token(); tok.Valid() {
		return tok, nil
	}
	next, err := r.service.Refresh(r.ctx, current)
	if err != nil {
		return nil, err
	}
	return next.OAuth2Token(), nil
}
