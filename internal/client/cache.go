package client

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ResponseCache is a best-effort read-through cache over a cache.Store.
// Store failures are logged at debug level and treated as misses; they
// never fail a call.
type ResponseCache struct {
	store  cache.Store
	group  singleflight.Group
	logger *zap.Logger
}

// NewResponseCache wraps store. A nil store gets a default in-memory one.
func NewResponseCache(store cache.Store, logger *zap.Logger) *ResponseCache {
	if store == nil {
		store = cache.NewMemoryStore(cache.DefaultCapacity)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{store: store, logger: logger}
}

// Get returns the cached value for key
func (c *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Debug("Response cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return v, ok
}

// Set stores value under key. A non-positive ttl uses the key class default;
// every ttl is clamped by the store.
func (c *ResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.TTLForKey(key)
	}
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		c.logger.Debug("Response cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every key starting with one of prefixes. An empty
// prefix drops everything.
func (c *ResponseCache) Invalidate(ctx context.Context, prefixes ...string) {
	for _, prefix := range prefixes {
		if _, err := c.store.Invalidate(ctx, prefix); err != nil {
			c.logger.Debug("Response cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}

// Fetch returns the cached value for key or calls load and caches its
// result. Concurrent Fetch calls for a key share one in-flight load. The
// load runs detached from the first caller's cancellation so the callers
// that joined it are not failed by it.
func (c *ResponseCache) Fetch(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.Set(loadCtx, key, value, ttl)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
