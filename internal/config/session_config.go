package config

import "time"

type SessionConfig interface {
	GetAuthSecret() string
	GetSessionMaxAge() time.Duration
	GetSessionCookieName() string
	GetSecureCookies() bool
	GetRefreshLeeway() time.Duration
}

var _ SessionConfig = EnvVars{}

func (e EnvVars) GetAuthSecret() string {
	return e.AuthSecret
}

// GetSessionMaxAge is how long a session claim stays valid after it was issued
func (e EnvVars) GetSessionMaxAge() time.Duration {
	return e.SessionMaxAge
}

func (e EnvVars) GetSessionCookieName() string {
	return e.SessionCookieName
}

// GetSecureCookies is forced on outside DEV
func (e EnvVars) GetSecureCookies() bool {
	return e.SecureCookies || !e.IsDev()
}

// GetRefreshLeeway is how close to expiry a backend access token is refreshed
func (e EnvVars) GetRefreshLeeway() time.Duration {
	return e.RefreshLeeway
}
