package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
)

type Config interface {
	EnvConfig
	BackendConfig
	SessionConfig
	GateConfig
	ProviderConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsDev() bool
}

type mainConfig struct {
	EnvVars
	Cors
}

var _ Config = mainConfig{}

// New reads the configuration from the process environment
func New() (Config, error) {
	return Load(envMap(os.Environ()))
}

// Load reads the configuration from environ, which maps variable names to values
func Load(environ map[string]string) (Config, error) {
	var vars EnvVars
	if err := env.ParseWithOptions(&vars, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(vars.AuthSecret) == "" {
		return nil, errors.Wrapf(errors.ErrSecretRequired, "%s", authSecretVar)
	}
	return mainConfig{
		EnvVars: vars,
		Cors:    newCors(vars.AllowedOrigins),
	}, nil
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			m[k] = v
		}
	}
	return m
}
