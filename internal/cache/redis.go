package cache

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores raw weather provider responses.
type RedisCache struct {
	client     *redis.Client
	weatherTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, weatherTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		weatherTTL: weatherTTL,
	}
}

// GetWeather returns nil, nil on a cache miss.
func (c *RedisCache) GetWeather(ctx context.Context, latitude, longitude float64) ([]byte, error) {
	data, err := c.client.Get(ctx, weatherKey(latitude, longitude)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (c *RedisCache) SetWeather(ctx context.Context, latitude, longitude float64, payload []byte) error {
	return c.client.Set(ctx, weatherKey(latitude, longitude), payload, c.weatherTTL).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// weatherKey buckets coordinates to four decimals (about 11 m).
func weatherKey(latitude, longitude float64) string {
	return fmt.Sprintf("cache:weather:%.4f:%.4f", bucket(latitude), bucket(longitude))
}

func bucket(v float64) float64 {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		// drop the sign of -0 so both zeros share a key
		return 0
	}
	return r
}
