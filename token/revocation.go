package token

import (
	"sync"
	"time"
)

// RevokedClaimCache remembers signed-out claim ids until the claim would have expired anyway
type RevokedClaimCache interface {
	Add(id string, exp time.Time) error
	IsRevoked(id string) bool
	Cleanup() // Remove expired entries
}

// InMemoryRevokedClaimCache is a simple in-memory implementation
type InMemoryRevokedClaimCache struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
	nowTime func() time.Time
}

// RevocationOption defines a function type to modify the cache instance.
type RevocationOption func(*InMemoryRevokedClaimCache)

// WithRevocationNowTime sets the clock used for expiry (primarily for testing)
func WithRevocationNowTime(nowFunc func() time.Time) RevocationOption {
	return func(c *InMemoryRevokedClaimCache) {
		c.nowTime = nowFunc
	}
}

func NewInMemoryRevokedClaimCache(options ...RevocationOption) *InMemoryRevokedClaimCache {
	c := &InMemoryRevokedClaimCache{
		revoked: make(map[string]time.Time),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

var _ RevokedClaimCache = (*InMemoryRevokedClaimCache)(nil)

// Add revokes id until exp. Entries already past exp are dropped first.
func (c *InMemoryRevokedClaimCache) Add(id string, exp time.Time) error {
	if id == "" {
		return nil
	}
	c.Cleanup()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[id] = exp
	return nil
}

func (c *InMemoryRevokedClaimCache) IsRevoked(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exp, exists := c.revoked[id]
	return exists && !c.nowTime().After(exp)
}

func (c *InMemoryRevokedClaimCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowTime()
	for id, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, id)
		}
	}
}

// Len is the number of ids currently held
func (c *InMemoryRevokedClaimCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.revoked)
}
