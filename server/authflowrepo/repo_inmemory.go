package authflowrepo

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-broker/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// Flows older than the timeout are treated as missing and pruned on write.
type InMemoryRepo struct {
	mu      sync.RWMutex
	states  map[string]*AuthFlowState
	timeout time.Duration
	nowTime func() time.Time
}

// Option defines a function type to modify the InMemoryRepo instance.
type Option func(*InMemoryRepo)

// WithNowTime sets the clock used for expiry (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *InMemoryRepo) {
		r.nowTime = nowFunc
	}
}

// NewInMemoryRepo creates a new in-memory auth flow state repository.
// A zero timeout keeps flows until they are taken or deleted.
func NewInMemoryRepo(timeout time.Duration, options ...Option) *InMemoryRepo {
	r := &InMemoryRepo{
		states:  make(map[string]*AuthFlowState),
		timeout: timeout,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Upsert stores or updates an auth flow state. A zero CreatedAt is set from
// the repo's clock.
func (r *InMemoryRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	stored := copyState(authState)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.nowTime()
	}
	r.states[state] = stored
	return nil
}

// Get retrieves an auth flow state by state parameter
func (r *InMemoryRepo) Get(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	authState, exists := r.states[state]
	if !exists || r.expired(authState) {
		return nil, errors.Wrapf(errors.ErrNotFound, "auth flow state")
	}
	return copyState(authState), nil
}

// Take retrieves and removes an auth flow state
func (r *InMemoryRepo) Take(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	delete(r.states, state)
	if !exists || r.expired(authState) {
		return nil, errors.Wrapf(errors.ErrNotFound, "auth flow state")
	}
	return authState, nil
}

// Delete removes an auth flow state
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.states, state)
	return nil
}

func (r *InMemoryRepo) expired(s *AuthFlowState) bool {
	return r.timeout > 0 && r.nowTime().Sub(s.CreatedAt) > r.timeout
}

func (r *InMemoryRepo) pruneLocked() {
	for k, s := range r.states {
		if r.expired(s) {
			delete(r.states, k)
		}
	}
}

func copyState(s *AuthFlowState) *AuthFlowState {
	c := *s
	return &c
}
