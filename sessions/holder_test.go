package sessions_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/stretchr/testify/require"
)

func TestHolder(t *testing.T) {
	var h sessions.Holder
	require.Nil(t, h.Current())
	require.Empty(t, h.AccessToken())

	s := newTestSession(t, time.Unix(1_800_000_000, 0))
	h.Set(s)
	require.Same(t, s, h.Current())
	require.Equal(t, s.AccessToken(), h.AccessToken())

	require.Same(t, s, h.Clear())
	require.Nil(t, h.Current())
	require.Nil(t, h.Clear())
}

func TestHolderConcurrentReplace(t *testing.T) {
	var h sessions.Holder
	a := newTestSession(t, time.Unix(1_800_000_000, 0))
	b := newTestSession(t, time.Unix(1_800_000_900, 0))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Set(a)
			h.Set(b)
		}()
		go func() {
			defer wg.Done()
			if s := h.Current(); s != nil {
				require.Equal(t, s.Claims().Exp()*1000, s.ExpiresAtMillis())
			}
		}()
	}
	wg.Wait()
	require.NotNil(t, h.Current())
}

func TestHolderCompareAndClear(t *testing.T) {
	var h sessions.Holder
	stale := newTestSession(t, time.Unix(1_800_000_000, 0))
	fresh := newTestSession(t, time.Unix(1_800_000_900, 0))

	require.False(t, h.CompareAndClear(stale))
	h.Set(fresh)
	require.False(t, h.CompareAndClear(stale))
	require.False(t, h.CompareAndClear(nil))
	require.Same(t, fresh, h.Current())

	require.True(t, h.CompareAndClear(fresh))
	require.Nil(t, h.Current())
}
