package textnorm

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"ReviewPulse/internal/ports"
)

// Cached memoizes another normalizer, keyed by the raw text. Errors are
// never cached.
type Cached struct {
	next  ports.Normalizer
	cache *cache.Cache
}

var _ ports.Normalizer = (*Cached)(nil)

// NewCached wraps next with an in-memory TTL cache.
func NewCached(next ports.Normalizer, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cached{next: next, cache: cache.New(ttl, ttl*2)}
}

// Normalize returns the cached value or asks the wrapped normalizer.
func (c *Cached) Normalize(ctx context.Context, text string) (string, error) {
	if cached, found := c.cache.Get(text); found {
		return cached.(string), nil
	}
	out, err := c.next.Normalize(ctx, text)
	if err != nil {
		return "", err
	}
	c.cache.Set(text, out, cache.DefaultExpiration)
	return out, nil
}

// Len reports how many entries are cached.
func (c *Cached) Len() int {
	return c.cache.ItemCount()
}
