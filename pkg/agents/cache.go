package agents

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheSize = 8
	defaultCacheTTL  = 30 * time.Second
)

// Observer receives directory fetch outcomes (metrics hooks).
type Observer interface {
	ObserveDirectoryFetch(duration time.Duration, err error)
}

type cacheEntry struct {
	agents   []Agent
	storedAt time.Time
}

// CachedDirectory fronts a Directory with a TTL cache keyed by the directory's
// public key. Concurrent misses share one upstream fetch.
type CachedDirectory struct {
	inner    Directory
	cache    *lru.Cache[string, cacheEntry]
	group    singleflight.Group
	ttl      time.Duration
	now      func() time.Time
	observer Observer
	logger   *slog.Logger
}

// CacheOption configures a CachedDirectory.
type CacheOption func(*CachedDirectory)

// WithTTL sets how long a fetched list is served before refreshing.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedDirectory) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the cache clock; tests only.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedDirectory) {
		if now != nil {
			c.now = now
		}
	}
}

// WithObserver registers a fetch observer.
func WithObserver(observer Observer) CacheOption {
	return func(c *CachedDirectory) {
		c.observer = observer
	}
}

// WithCacheLogger sets the structured logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedDirectory) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachedDirectory wraps inner with a TTL cache.
func NewCachedDirectory(inner Directory, options ...CacheOption) *CachedDirectory {
	// lru.New only errors on a non-positive size.
	cache, _ := lru.New[string, cacheEntry](defaultCacheSize)
	c := &CachedDirectory{
		inner:  inner,
		cache:  cache,
		ttl:    defaultCacheTTL,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Agents implements Directory.
func (c *CachedDirectory) Agents(ctx context.Context) ([]Agent, error) {
	key := c.inner.PublicKey()
	if entry, ok := c.cache.Get(key); ok {
		if c.now().Sub(entry.storedAt) < c.ttl {
			return append([]Agent(nil), entry.agents...), nil
		}
		c.cache.Remove(key)
	}

	// Callers share the fetch, so it ignores the first caller's cancellation.
	// The inner client's timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	results := c.group.DoChan(key, func() (any, error) {
		started := c.now()
		list, err := c.inner.Agents(fetchCtx)
		if c.observer != nil {
			c.observer.ObserveDirectoryFetch(c.now().Sub(started), err)
		}
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, cacheEntry{agents: list, storedAt: c.now()})
		return list, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			c.logger.Warn("agent directory refresh failed", "error", res.Err)
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("agent directory fetch shared")
		}
		return append([]Agent(nil), res.Val.([]Agent)...), nil
	}
}

// PublicKey implements Directory.
func (c *CachedDirectory) PublicKey() string {
	return c.inner.PublicKey()
}

// Invalidate drops the cached listing.
func (c *CachedDirectory) Invalidate() {
	c.cache.Remove(c.inner.PublicKey())
}
