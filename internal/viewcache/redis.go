package viewcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/logging"
)

// RedisCache stores view payloads in redis so cache hits are shared across
// instances.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the redis instance behind the provided URL.
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// Get returns the cached value when present. Redis errors count as misses.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.FromContext(ctx).Warn("view cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

// Set stores the value for the provided TTL. Errors are logged and dropped.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("view cache set failed", "key", key, "error", err)
	}
}

// Close releases the underlying redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
