package config

import "time"

const (
	DefaultRequestTimeout = 8 * time.Second
	DefaultRetryCount     = 1
	DefaultRetryDelay     = 200 * time.Millisecond
)

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", DefaultRequestTimeout)
}

// GetRetryCount is the number of attempts allowed after the first one.
func (Client) GetRetryCount() int {
	return GetEnvInt("API_RETRY_COUNT", DefaultRetryCount)
}

func (Client) GetRetryDelay() time.Duration {
	return GetEnvDuration("API_RETRY_DELAY", DefaultRetryDelay)
}
