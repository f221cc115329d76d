package sessions

import "time"

// Status of a session at a point in time.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// Info is a read-only projection of a Session for display.
type Info struct {
	UserID            string    `json:"userId"`
	TenantID          string    `json:"tenantId"`
	Role              string    `json:"role"`
	IssuedAt          time.Time `json:"issuedAt"`
	ExpiresAt         time.Time `json:"expiresAt"`
	Status            Status    `json:"status"`
	ExpirationMinutes int64     `json:"expirationMinutes"`
}

// Info projects s at now. ExpirationMinutes rounds the remaining time up and never
// goes below zero.
func (s *Session) Info(now time.Time) Info {
	status := StatusActive
	if s.IsExpired(now) {
		status = StatusExpired
	}
	return Info{
		UserID:            s.claims.UserID(),
		TenantID:          s.claims.TenantID,
		Role:              s.claims.Role,
		IssuedAt:          s.issuedAt,
		ExpiresAt:         s.expiresAt,
		Status:            status,
		ExpirationMinutes: remainingMinutes(s.ExpiresAtMillis() - now.UnixMilli()),
	}
}

func remainingMinutes(ms int64) int64 {
	const minute = int64(time.Minute / time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return (ms + minute - 1) / minute
}
