package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis connection used for external search results. A nil
// client turns every operation into a no-op so the server runs without
// Redis in development and tests.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr. An empty addr yields a disabled cache.
func New(addr, password string, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		return &Cache{ttl: ttl}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: rdb, ttl: ttl}, nil
}

// Enabled reports whether a live Redis connection is backing the cache.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached payload for key, or ("", nil) on a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if !c.Enabled() {
		return "", nil
	}
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores value under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
