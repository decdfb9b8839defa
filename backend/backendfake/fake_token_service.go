package backendfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-broker/auth"
	"github.com/jrsteele09/go-auth-broker/backend"
	"github.com/jrsteele09/go-auth-broker/token"
)

var _ auth.TokenService = (*FakeTokenService)(nil)

// FakeTokenService is an in-memory stand-in for the backend token service.
// Each Func field, when set, decides the result of the matching call.
// Unset funcs return an empty 401 StatusError.
type FakeTokenService struct {
	mu sync.Mutex

	LoginFunc          func(ctx context.Context, creds token.Credentials) (*backend.TokenResponse, error)
	FederatedLoginFunc func(ctx context.Context, pt token.ProviderToken) (*backend.TokenResponse, error)
	RegisterFunc       func(ctx context.Context, req backend.RegisterRequest) (*backend.TokenResponse, error)
	RefreshFunc        func(ctx context.Context, refreshToken string) (*backend.RefreshResponse, error)

	LoginCalls          []token.Credentials
	FederatedLoginCalls []token.ProviderToken
	RegisterCalls       []backend.RegisterRequest
	RefreshCalls        []string
}

// NewFakeTokenService creates a fake with no behaviour configured
func NewFakeTokenService() *FakeTokenService {
	return &FakeTokenService{}
}

func unauthorised() error {
	return &backend.StatusError{Status: 401}
}

func (f *FakeTokenService) Login(ctx context.Context, creds token.Credentials) (*backend.TokenResponse, error) {
	f.mu.Lock()
	f.LoginCalls = append(f.LoginCalls, creds)
	fn := f.LoginFunc
	f.mu.Unlock()

	if fn == nil {
		return nil, unauthorised()
	}
	return fn(ctx, creds)
}

func (f *FakeTokenService) FederatedLogin(ctx context.Context, pt token.ProviderToken) (*backend.TokenResponse, error) {
	f.mu.Lock()
	f.FederatedLoginCalls = append(f.FederatedLoginCalls, pt)
	fn := f.FederatedLoginFunc
	f.mu.Unlock()

	if fn == nil {
		return nil, unauthorised()
	}
	return fn(ctx, pt)
}

func (f *FakeTokenService) Register(ctx context.Context, req backend.RegisterRequest) (*backend.TokenResponse, error) {
	f.mu.Lock()
	f.RegisterCalls = append(f.RegisterCalls, req)
	fn := f.RegisterFunc
	f.mu.Unlock()

	if fn == nil {
		return nil, unauthorised()
	}
	return fn(ctx, req)
}

func (f *FakeTokenService) Refresh(ctx context.Context, refreshToken string) (*backend.RefreshResponse, error) {
	f.mu.Lock()
	f.RefreshCalls = append(f.RefreshCalls, refreshToken)
	fn := f.RefreshFunc
	f.mu.Unlock()

	if fn == nil {
		return nil, unauthorised()
	}
	return fn(ctx, refreshToken)
}

// Calls returns the total number of calls made to the fake
func (f *FakeTokenService) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.LoginCalls) + len(f.FederatedLoginCalls) + len(f.RegisterCalls) + len(f.RefreshCalls)
}
