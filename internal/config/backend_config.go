package config

import "time"

type BackendConfig interface {
	GetBackendURL() string
	GetBackendTimeout() time.Duration
}

var _ BackendConfig = EnvVars{}

// GetBackendURL is the base URL of the backend token service, without a trailing slash
func (e EnvVars) GetBackendURL() string {
	return e.BackendURL
}

func (e EnvVars) GetBackendTimeout() time.Duration {
	return e.BackendTimeout
}
