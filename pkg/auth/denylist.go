package auth

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked token IDs until the tokens would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Cache is the subset of the shared cache the denylist needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

const revokedKeyPrefix = "auth:revoked:"

type CacheDenylist struct {
	cache Cache
	now   func() time.Time
}

func NewCacheDenylist(cache Cache) *CacheDenylist {
	return &CacheDenylist{cache: cache, now: time.Now}
}

func (d *CacheDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.cache.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl)
}

func (d *CacheDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	v, err := d.cache.Get(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return v != "", nil
}

type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, exp := range d.revoked {
		if !exp.After(now) {
			delete(d.revoked, id)
		}
	}

	if until.After(now) {
		d.revoked[tokenID] = until
	}
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[tokenID]
	return ok && exp.After(d.now()), nil
}
