package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/geoglobe/worldquiz/internal/cache"
	"github.com/geoglobe/worldquiz/internal/worldquiz"
)

const redisKey = "countries:dataset"

// RedisSource caches the dataset in Redis so multiple server processes
// share one copy, falling back to the upstream loader on cache miss.
type RedisSource struct {
	client *redis.Client
	loader cache.Loader[[]worldquiz.CountryRecord]
	ttl    time.Duration
	sf     singleflight.Group
}

func NewRedisSource(client *redis.Client, loader cache.Loader[[]worldquiz.CountryRecord], ttl time.Duration) *RedisSource {
	return &RedisSource{client: client, loader: loader, ttl: ttl}
}

func (s *RedisSource) Countries(ctx context.Context) ([]worldquiz.CountryRecord, error) {
	if records, ok := s.cached(ctx); ok {
		return records, nil
	}

	result, err, _ := s.sf.Do(redisKey, func() (any, error) {
		// Re-check in case another goroutine filled the key.
		if records, ok := s.cached(ctx); ok {
			return records, nil
		}

		records, err := s.loader(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", worldquiz.ErrUpstreamUnavailable, err)
		}

		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encoding countries for redis: %w", err)
		}
		// Best effort: a failed SET only costs a refetch later.
		_ = s.client.Set(ctx, redisKey, data, s.ttl).Err()

		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]worldquiz.CountryRecord), nil
}

func (s *RedisSource) cached(ctx context.Context) ([]worldquiz.CountryRecord, bool) {
	data, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		return nil, false
	}
	var records []worldquiz.CountryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	return records, true
}
