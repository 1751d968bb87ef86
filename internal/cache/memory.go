package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ipsqr-service/internal/ipsqr"
	"ipsqr-service/internal/status"
)

var _ Cache = (*MemoryCache)(nil)

// MemoryCache is the in-process cache used when no redis is configured.
// Results are copied in and out so callers never share a record.
type MemoryCache struct {
	items *gocache.Cache
}

func NewMemoryCache(ttl, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(ttl, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*ipsqr.Result, error) {
	v, found := c.items.Get(key)
	if !found {
		return nil, status.ErrCacheMiss
	}
	return v.(*ipsqr.Result).Clone(), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, res *ipsqr.Result) error {
	c.items.Set(key, res.Clone(), gocache.DefaultExpiration)
	return nil
}

// ItemCount returns the number of cached results, expired ones included
// until the next cleanup.
func (c *MemoryCache) ItemCount() int {
	return c.items.ItemCount()
}
