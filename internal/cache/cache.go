// Package cache provides a TTL read-through cache around a slow or
// rate-limited upstream loader.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// Loader fetches a fresh value from the upstream source. It may fail.
type Loader[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cache caches a single value with a TTL. Stale entries are refreshed
// through the loader with at most one in-flight fetch at a time;
// concurrent callers await the same result. If a refresh fails but a
// stale entry exists, the stale value is served and the failure logged.
type Cache[T any] struct {
	loader Loader[T]
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu  sync.RWMutex
	ent *entry[T]
	sf  singleflight.Group
}

// New builds a cache with the given TTL and upstream loader.
func New[T any](logger *slog.Logger, loader Loader[T], ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		loader: loader,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// NewWithClock is test-only for deterministic expiry.
func NewWithClock[T any](logger *slog.Logger, loader Loader[T], ttl time.Duration, now func() time.Time) *Cache[T] {
	c := New(logger, loader, ttl)
	c.now = now
	return c
}

// Get returns the cached value, refreshing it through the loader when the
// entry is missing or older than the TTL. The returned value is a snapshot;
// the cache never hands out its internal entry for mutation.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	if v, ok := c.fresh(); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do("refresh", func() (any, error) {
		// Re-check under singleflight: another caller may have
		// completed the refresh while we queued.
		if v, ok := c.fresh(); ok {
			return v, nil
		}

		v, err := c.loader(ctx)
		if err != nil {
			c.mu.RLock()
			stale := c.ent
			c.mu.RUnlock()
			if stale != nil {
				c.logger.Warn("serving stale reference data after refresh failure",
					"age", c.now().Sub(stale.fetchedAt).String(),
					"error", err,
				)
				return stale.value, nil
			}
			return nil, fmt.Errorf("%w: %v", worldquiz.ErrUpstreamUnavailable, err)
		}

		c.mu.Lock()
		c.ent = &entry[T]{value: v, fetchedAt: c.now()}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// fresh returns the cached value if it is within the TTL.
func (c *Cache[T]) fresh() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ent != nil && c.now().Sub(c.ent.fetchedAt) < c.ttl {
		return c.ent.value, true
	}
	var zero T
	return zero, false
}
