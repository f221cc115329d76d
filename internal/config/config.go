package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseProduction() string
	GetAPIBaseStaging() string
	GetAPIBaseLocal() string
	GetAPIBaseFile() string
}

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetRetryCount() int
	GetRetryDelay() time.Duration
}

type SessionConfig interface {
	GetSessionScope() string
	GetSessionTTL() time.Duration
	GetSessionRedisAddr() string
	GetSessionSealKey() string
}

type mainConfig struct {
	EnvVars
	Client
	Session
}

func New() Config {
	return mainConfig{}
}
