// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Counter records one hit for key and reports whether the limit was already reached.
type Counter interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type bucket struct {
	count   int
	resetAt time.Time
}

// MemoryCounter keeps windows in process. Expired buckets are swept on access.
type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	lastGC  time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{buckets: make(map[string]*bucket), now: time.Now}
}

func (c *MemoryCounter) Hit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now, window)

	b, ok := c.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		c.buckets[key] = &bucket{count: 1, resetAt: now.Add(window)}
		return false, nil
	}
	if b.count >= limit {
		return true, nil
	}
	b.count++
	return false, nil
}

func (c *MemoryCounter) sweep(now time.Time, window time.Duration) {
	if now.Sub(c.lastGC) < window {
		return
	}
	for key, b := range c.buckets {
		if !now.Before(b.resetAt) {
			delete(c.buckets, key)
		}
	}
	c.lastGC = now
}

// RedisCounter shares windows across instances: INCR, with EXPIRE set on the first hit.
type RedisCounter struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{Client: client, Prefix: "rl:"}
}

func (c *RedisCounter) Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := c.Prefix + key
	count, err := c.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := c.Client.Expire(ctx, redisKey, window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", redisKey, err)
		}
	}
	return count > int64(limit), nil
}
