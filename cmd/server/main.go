package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/internal/config"
	"github.com/jrsteele09/go-auth-broker/provider"
	"github.com/jrsteele09/go-auth-broker/server"
	"github.com/jrsteele09/go-auth-broker/server/authflowrepo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New: %w", err)
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	if c.GetBackendURL() == "" {
		log.Warn().Msg("BACKEND_URL is not set, every sign in will fail until it is configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	providers, err := newProviders(ctx, c)
	cancel()
	if err != nil {
		return err
	}

	handler, err := server.New(c, server.Dependencies{
		TokenService: backend.NewClient(c.GetBackendURL(), &http.Client{Timeout: c.GetBackendTimeout()}),
		Providers:    providers,
		AuthState:    authflowrepo.NewInMemoryRepo(c.GetAuthFlowTimeout()),
	})
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.EnvConfig) {
	zerolog.TimeFieldFormat = time.RFC3339
	if c.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// newProviders registers every provider that has a client id configured
func newProviders(ctx context.Context, c config.ProviderConfig) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	if gh := c.GetGitHub(); gh.Enabled() {
		registry.Register(provider.NewGitHub(gh.ClientID, gh.ClientSecret, gh.RedirectURL, gh.Scopes))
	}

	if oc := c.GetOIDC(); oc.Enabled() {
		p, err := provider.NewOIDC(ctx, provider.OIDCSettings{
			Name:         oc.Name,
			Issuer:       oc.Issuer,
			ClientID:     oc.ClientID,
			ClientSecret: oc.ClientSecret,
			RedirectURL:  oc.RedirectURL,
			Scopes:       oc.Scopes,
		})
		if err != nil {
			return nil, fmt.Errorf("provider.NewOIDC(%s): %w", oc.Issuer, err)
		}
		registry.Register(p)
	}

	log.Info().Strs("providers", registry.Names()).Msg("federated providers")
	return registry, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
