// Package cache provides a Redis-backed cache-aside helper for catalog reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the subset of cache behaviour the services depend on.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Stats tracks cache statistics.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Errors  uint64 `json:"errors"`
}

// Cache stores JSON-encoded values in Redis under a key prefix.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
}

// New creates a cache on top of an existing client.
func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Get decodes the cached value into dest. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddUint64(&c.stats.Misses, 1)
			return false, nil
		}
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache get error: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	atomic.AddUint64(&c.stats.Hits, 1)
	return true, nil
}

// Set stores value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache set error: %w", err)
	}
	atomic.AddUint64(&c.stats.Sets, 1)
	return nil
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		atomic.AddUint64(&c.stats.Errors, 1)
		return fmt.Errorf("cache delete error: %w", err)
	}
	atomic.AddUint64(&c.stats.Deletes, 1)
	return nil
}

// DeletePattern removes every key under the prefix matching pattern.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+pattern, 100).Result()
		if err != nil {
			atomic.AddUint64(&c.stats.Errors, 1)
			return fmt.Errorf("cache scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				atomic.AddUint64(&c.stats.Errors, 1)
				return fmt.Errorf("cache delete error: %w", err)
			}
			atomic.AddUint64(&c.stats.Deletes, uint64(len(keys)))
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Snapshot returns a copy of the current counters.
func (c *Cache) Snapshot() Stats {
	return Stats{
		Hits:    atomic.LoadUint64(&c.stats.Hits),
		Misses:  atomic.LoadUint64(&c.stats.Misses),
		Sets:    atomic.LoadUint64(&c.stats.Sets),
		Deletes: atomic.LoadUint64(&c.stats.Deletes),
		Errors:  atomic.LoadUint64(&c.stats.Errors),
	}
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Noop is used when Redis is not configured; every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, any) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) DeletePattern(context.Context, string) error { return nil }
