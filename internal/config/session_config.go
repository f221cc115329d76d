package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionScope namespaces persisted sessions so that separate profiles never share one.
func (Session) GetSessionScope() string {
	return GetEnv("SESSION_SCOPE", "default")
}

func (Session) GetSessionTTL() time.Duration {
	return GetEnvDuration("SESSION_TTL", 30*time.Minute)
}

// GetSessionRedisAddr returns the Redis address for session persistence. Empty selects
// the in-memory store.
func (Session) GetSessionRedisAddr() string {
	return GetEnv("SESSION_REDIS_ADDR", "")
}

// GetSessionSealKey returns a hex encoded 32 byte key. Empty disables sealing.
func (Session) GetSessionSealKey() string {
	return GetEnv("SESSION_SEAL_KEY", "")
}
