package schema

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheKey = "schema"

// CachedDescriber memoizes the schema description for a TTL. The schema only
// changes when migrations run, so serving a slightly stale description is an
// acceptable trade for skipping an information_schema scan per request.
type CachedDescriber struct {
	inner Describer
	cache *expirable.LRU[string, string]
}

func NewCached(inner Describer, ttl time.Duration) *CachedDescriber {
	return &CachedDescriber{
		inner: inner,
		cache: expirable.NewLRU[string, string](1, nil, ttl),
	}
}

func (c *CachedDescriber) Describe(ctx context.Context) (string, error) {
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached, nil
	}
	description, err := c.inner.Describe(ctx)
	if err != nil {
		return "", err
	}
	c.cache.Add(cacheKey, description)
	return description, nil
}
