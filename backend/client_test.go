package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/internal/errors"
	"github.com/jrsteele09/go-auth-broker/token"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        map[string]any
}

// newBackend starts a fake backend that answers every request with status and body
func newBackend(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, ContentType: r.Header.Get("Content-Type")}
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		requests = append(requests, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv, reqs := newBackend(t, http.StatusOK, `{"message":"Login successful","access_token":"A","refresh_token":"R","user":{"id":1,"username":"alice"}}`)
		c := backend.NewClient(srv.URL+"/", srv.Client())

		resp, err := c.Login(ctx, token.Credentials{Username: "alice", Password: "secret"})
		require.NoError(t, err)
		require.Equal(t, "A", resp.AccessToken)
		require.Equal(t, "R", resp.RefreshToken)
		require.Equal(t, `1`, string(resp.User.ID))
		require.Equal(t, "alice", resp.User.Username)
		require.Equal(t, "Login successful", resp.Message)

		require.Len(t, *reqs, 1)
		got := (*reqs)[0]
		require.Equal(t, http.MethodPost, got.Method)
		require.Equal(t, backend.PathLogin, got.Path)
		require.Equal(t, "application/json", got.ContentType)
		require.Equal(t, map[string]any{"username": "alice", "password": "secret"}, got.Body)
	})

	t.Run("rejected with message", func(t *testing.T) {
		srv, _ := newBackend(t, http.StatusUnauthorized, `{"error":"Invalid credentials"}`)
		c := backend.NewClient(srv.URL, srv.Client())

		_, err := c.Login(ctx, token.Credentials{Username: "alice", Password: "wrong"})
		var se *backend.StatusError
		require.ErrorAs(t, err, &se)
		require.Equal(t, http.StatusUnauthorized, se.Status)
		require.Equal(t, "Invalid credentials", se.Message)
	})

	t.Run("rejected without body", func(t *testing.T) {
		srv, _ := newBackend(t, http.StatusInternalServerError, `<html>oops</html>`)
		c := backend.NewClient(srv.URL, srv.Client())

		_, err := c.Login(ctx, token.Credentials{Username: "alice", Password: "secret"})
		var se *backend.StatusError
		require.ErrorAs(t, err, &se)
		require.Equal(t, http.StatusInternalServerError, se.Status)
		require.Empty(t, se.Message)
	})

	t.Run("malformed success body", func(t *testing.T) {
		srv, _ := newBackend(t, http.StatusOK, `not json`)
		c := backend.NewClient(srv.URL, srv.Client())

		_, err := c.Login(ctx, token.Credentials{Username: "alice", Password: "secret"})
		require.ErrorIs(t, err, errors.ErrMalformedResponse)
	})

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := backend.NewClient(url, nil)
		_, err := c.Login(ctx, token.Credentials{Username: "alice", Password: "secret"})
		require.ErrorIs(t, err, errors.ErrUpstreamUnavailable)
	})

	t.Run("missing base url", func(t *testing.T) {
		c := backend.NewClient("", nil)
		_, err := c.Login(ctx, token.Credentials{Username: "alice", Password: "secret"})
		require.ErrorIs(t, err, errors.ErrBackendURLMissing)
	})
}

func TestClient_FederatedLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("posts provider token to provider endpoint", func(t *testing.T) {
		srv, reqs := newBackend(t, http.StatusOK, `{"access_token":"BA","refresh_token":"BR","user":{"id":9,"username":"octocat"}}`)
		c := backend.NewClient(srv.URL, srv.Client())

		resp, err := c.FederatedLogin(ctx, token.ProviderToken{Provider: "github", AccessToken: "gho_123"})
		require.NoError(t, err)
		require.Equal(t, "BA", resp.AccessToken)
		require.Equal(t, "BR", resp.RefreshToken)

		require.Len(t, *reqs, 1)
		require.Equal(t, "/api/auth/github/", (*reqs)[0].Path)
		require.Equal(t, map[string]any{"access_token": "gho_123"}, (*reqs)[0].Body)
	})

	t.Run("provider required", func(t *testing.T) {
		c := backend.NewClient("http://backend.invalid", nil)
		_, err := c.FederatedLogin(ctx, token.ProviderToken{AccessToken: "x"})
		require.Error(t, err)
	})
}

func TestClient_Register(t *testing.T) {
	srv, reqs := newBackend(t, http.StatusCreated, `{"message":"User created successfully","access_token":"A","refresh_token":"R","user":{"id":2,"username":"bob","email":"bob@example.com"}}`)
	c := backend.NewClient(srv.URL, srv.Client())

	resp, err := c.Register(context.Background(), backend.RegisterRequest{Username: "bob", Password: "pw", Email: "bob@example.com"})
	require.NoError(t, err)
	require.Equal(t, "bob", resp.User.Username)

	require.Equal(t, backend.PathRegister, (*reqs)[0].Path)
	require.Equal(t, map[string]any{"username": "bob", "password": "pw", "email": "bob@example.com"}, (*reqs)[0].Body)
}

func TestClient_Refresh(t *testing.T) {
	srv, reqs := newBackend(t, http.StatusOK, `{"access_token":"A2"}`)
	c := backend.NewClient(srv.URL, srv.Client())

	resp, err := c.Refresh(context.Background(), "R")
	require.NoError(t, err)
	require.Equal(t, "A2", resp.AccessToken)
	require.Equal(t, backend.PathRefresh, (*reqs)[0].Path)
	require.Equal(t, map[string]any{"refresh_token": "R"}, (*reqs)[0].Body)
}

func TestStatusError_Error(t *testing.T) {
	require.Equal(t, "backend responded with status 401", (&backend.StatusError{Status: 401}).Error())
	require.Equal(t, "backend responded with status 400: bad", (&backend.StatusError{Status: 400, Message: "bad"}).Error())
}
