// Package cache provides an optional Redis read-through cache for
// assembled search results. The flight catalog is immutable and search
// performs no writes, so serving a cached result is equivalent to
// re-running the same read-only transaction.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saasha05/FlightBookingSystem/config"
	"github.com/saasha05/FlightBookingSystem/internal/domain"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

// GetItineraries returns the cached result for key, or (nil, nil) on a
// miss.
func (c *RedisCache) GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, error) {
	data, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var its []domain.Itinerary
	if err := json.Unmarshal(data, &its); err != nil {
		return nil, err
	}
	return its, nil
}

func (c *RedisCache) SetItineraries(ctx context.Context, key string, its []domain.Itinerary) error {
	payload, err := json.Marshal(its)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(key), payload, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func cacheKey(key string) string {
	return "cache:" + key
}
