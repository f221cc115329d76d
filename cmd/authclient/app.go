package main

import (
	"fmt"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/environment"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/sources"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// app holds the wired client stack.
type app struct {
	client  *apiclient.Client
	holder  *sessions.Holder
	service *auth.Service
	sources *sources.Service
	closers []func() error
}

func newApp(c config.Config) (*app, error) {
	base, err := environment.ResolveBase(c)
	if err != nil {
		return nil, err
	}
	log.Info().Str("env", c.GetEnv()).Str("base", base).Msg("api base resolved")

	a := &app{holder: &sessions.Holder{}}

	store, err := a.newStore(c)
	if err != nil {
		return nil, err
	}

	a.client = apiclient.New(base,
		apiclient.WithConfig(c),
		apiclient.WithTokenAccessor(a.holder.AccessToken),
		apiclient.WithUnauthorizedHandler(a.onUnauthorized),
	)
	if a.service, err = auth.NewService(a.client, a.holder, auth.WithStore(store)); err != nil {
		return nil, err
	}
	a.sources = sources.NewService(a.client)
	return a, nil
}

// newStore selects Redis when an address is configured, and seals values when a key is.
func (a *app) newStore(c config.SessionConfig) (sessions.Store, error) {
	var store sessions.Store = sessions.NewMemoryStore()
	if addr := c.GetSessionRedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		a.closers = append(a.closers, rdb.Close)
		store = sessions.NewRedisStore(rdb, c.GetSessionScope(), c.GetSessionTTL())
	}
	if hexKey := c.GetSessionSealKey(); hexKey != "" {
		key, err := sessions.ParseSealKey(hexKey)
		if err != nil {
			return nil, fmt.Errorf("SESSION_SEAL_KEY: %w", err)
		}
		store = sessions.NewSealedStore(store, key)
	}
	return store, nil
}

func (a *app) onUnauthorized(result apiclient.Result) {
	if a.service != nil {
		a.service.HandleUnauthorized(result)
	}
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}
