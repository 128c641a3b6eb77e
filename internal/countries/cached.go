package countries

import (
	"context"
	"log/slog"
	"time"

	"github.com/geoglobe/worldquiz/internal/cache"
	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

// Cached is the in-process Source: a TTL read-through cache in front of an
// upstream loader.
type Cached struct {
	cache *cache.Cache[[]worldquiz.CountryRecord]
}

// NewCached wraps loader in a cache with the given TTL.
func NewCached(logger *slog.Logger, loader cache.Loader[[]worldquiz.CountryRecord], ttl time.Duration) *Cached {
	return &Cached{cache: cache.New(logger, loader, ttl)}
}

func (c *Cached) Countries(ctx context.Context) ([]worldquiz.CountryRecord, error) {
	return c.cache.Get(ctx)
}
