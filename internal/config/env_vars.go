package config

import (
	"strings"
	"time"
)

const authSecretVar = "AUTH_SECRET"

// EnvVars is every setting the broker reads from the environment
type EnvVars struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppName string `env:"APP_NAME" envDefault:"Go Auth Broker"`
	Env     string `env:"ENV" envDefault:"DEV"`

	BackendURL     string        `env:"BACKEND_URL"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	AuthSecret        string        `env:"AUTH_SECRET"`
	SessionMaxAge     time.Duration `env:"SESSION_MAX_AGE" envDefault:"720h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"broker.session-token"`
	SecureCookies     bool          `env:"SECURE_COOKIES"`
	RefreshLeeway     time.Duration `env:"ACCESS_TOKEN_REFRESH_LEEWAY" envDefault:"30s"`

	LoginPath  string   `env:"LOGIN_PATH" envDefault:"/login"`
	HomePath   string   `env:"HOME_PATH" envDefault:"/"`
	GateBypass []string `env:"GATE_BYPASS" envSeparator:","`

	AuthFlowTimeout time.Duration `env:"AUTH_FLOW_TIMEOUT" envDefault:"10m"`

	GitHubClientID     string   `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string   `env:"GITHUB_CLIENT_SECRET"`
	GitHubRedirectURL  string   `env:"GITHUB_REDIRECT_URL"`
	GitHubScopes       []string `env:"GITHUB_SCOPES" envSeparator:","`

	OIDCName         string   `env:"OIDC_NAME" envDefault:"oidc"`
	OIDCIssuer       string   `env:"OIDC_ISSUER"`
	OIDCClientID     string   `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string   `env:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string   `env:"OIDC_REDIRECT_URL"`
	OIDCScopes       []string `env:"OIDC_SCOPES" envSeparator:","`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return ":" + e.Port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) IsDev() bool {
	return strings.EqualFold(e.Env, "DEV")
}
