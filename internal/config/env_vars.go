package config

import (
	"os"
	"strconv"
	"time"
)

const (
	appNameVar           = "APP_NAME"
	appEnvVar            = "APP_ENV"
	apiBaseProductionVar = "API_BASE_PRODUCTION"
	apiBaseStagingVar    = "API_BASE_STAGING"
	apiBaseLocalVar      = "API_BASE_LOCAL"
	apiBaseFileVar       = "API_BASE_FILE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go Auth Client")
}

// GetEnv returns the deployment environment label. An empty string means unset.
func (EnvVars) GetEnv() string {
	return os.Getenv(appEnvVar)
}

func (EnvVars) GetAPIBaseProduction() string {
	return os.Getenv(apiBaseProductionVar)
}

func (EnvVars) GetAPIBaseStaging() string {
	return os.Getenv(apiBaseStagingVar)
}

func (EnvVars) GetAPIBaseLocal() string {
	return os.Getenv(apiBaseLocalVar)
}

// GetAPIBaseFile returns the path of an optional YAML table of environment bases.
func (EnvVars) GetAPIBaseFile() string {
	return os.Getenv(apiBaseFileVar)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvDuration parses envVar with time.ParseDuration, returning defaultValue when
// the variable is unset or malformed.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}

func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
