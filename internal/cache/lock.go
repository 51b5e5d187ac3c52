package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker serializes work on a key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// ---------------- REDIS ----------------

// RedisLocker takes the lock with SET NX and only releases it while it still owns it.
type RedisLocker struct {
	Client *redis.Client
	Prefix string
	Retry  time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{Client: client, Prefix: "lock:", Retry: 25 * time.Millisecond}
}

func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := l.Prefix + key
	owner := uuid.NewString()
	for {
		ok, err := l.Client.SetNX(ctx, fullKey, owner, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			return func() { once.Do(func() { l.release(fullKey, owner) }) }, nil
		}
		select {
		case <-time.After(l.Retry):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *RedisLocker) release(key, owner string) {
	ctx := context.Background()
	val, err := l.Client.Get(ctx, key).Result()
	if err != nil {
		return
	}
	if val == owner {
		l.Client.Del(ctx, key)
	}
}

// ---------------- IN-PROCESS ----------------

// MemoryLocker is the single-process Locker. ttl is ignored.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: map[string]chan struct{}{}}
}

func (l *MemoryLocker) Lock(ctx context.Context, key string, _ time.Duration) (func(), error) {
	for {
		l.mu.Lock()
		wait, busy := l.held[key]
		if !busy {
			done := make(chan struct{})
			l.held[key] = done
			l.mu.Unlock()
			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.held, key)
					l.mu.Unlock()
					close(done)
				})
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
