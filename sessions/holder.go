package sessions

import "sync/atomic"

// Holder is the current-session reference. Updates swap the whole pointer.
type Holder struct {
	current atomic.Pointer[Session]
}

// Current returns the held session, or nil.
func (h *Holder) Current() *Session {
	return h.current.Load()
}

// Set replaces the held session.
func (h *Holder) Set(s *Session) {
	h.current.Store(s)
}

// Clear drops the held session and returns the previous one.
func (h *Holder) Clear() *Session {
	return h.current.Swap(nil)
}

// CompareAndClear drops the held session only if it is still s.
func (h *Holder) CompareAndClear(s *Session) bool {
	return s != nil && h.current.CompareAndSwap(s, nil)
}

// AccessToken returns the held access token, or "" without a session. It is shaped
// for use as an apiclient token accessor.
func (h *Holder) AccessToken() string {
	if s := h.current.Load(); s != nil {
		return s.accessToken
	}
	return ""
}
