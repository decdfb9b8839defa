package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/jrsteele09/go-auth-broker/users"
)

// Backend endpoint paths, relative to the configured base URL
const (
	PathLogin     = "/api/auth/login/"
	PathRegister  = "/api/auth/register/"
	PathRefresh   = "/api/auth/refresh/"
	pathFederated = "/api/auth/%s/"

	maxResponseBytes = 1 << 20
)

// TokenResponse is the backend success body for login, registration and federated login.
type TokenResponse struct {
	Message      string        `json:"message,omitempty"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         users.Profile `json:"user"`
}

// RefreshResponse is the backend success body for a refresh request.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// RegisterRequest is the sign-up body accepted by the backend.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// StatusError is returned when the backend answers with a non-success status.
// Message is the backend's "error" field and may be empty.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.Status)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

// Client talks to the backend token service.
// It issues exactly one request per call and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Login exchanges a username and password for a token pair.
func (c *Client) Login(ctx context.Context, creds token.Credentials) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.post(ctx, PathLogin, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FederatedLogin exchanges a provider access token for a backend token pair.
func (c *Client) FederatedLogin(ctx context.Context, pt token.ProviderToken) (*TokenResponse, error) {
	if strings.TrimSpace(pt.Provider) == "" {
		return nil, fmt.Errorf("federated login: provider is required")
	}
	path := fmt.Sprintf(pathFederated, url.PathEscape(pt.Provider))
	body := struct {
		AccessToken string `json:"access_token"`
	}{AccessToken: pt.AccessToken}

	var resp TokenResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a backend account and returns its first token pair.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.post(ctx, PathRegister, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh trades a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	var resp RefreshResponse
	if err := c.post(ctx, PathRefresh, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if c.baseURL == "" {
		return errors.ErrBackendURLMissing
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %w", errors.ErrUpstreamUnavailable, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %w", errors.ErrUpstreamUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb) // the error body is optional
		return &StatusError{Status: resp.StatusCode, Message: eb.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", errors.ErrMalformedResponse, path, err)
	}
	return nil
}
