package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis starts miniredis and a client connected to it.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(mr.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestConnectFailsWithoutServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Connect(addr, nil)
	assert.Error(t, err)
}

func TestRedisLockerExclusive(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker := NewRedisLocker(client)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "poster-client:1:2", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:poster-client:1:2"))

	short, cancel := context.WithTimeout(ctx, 60*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "poster-client:1:2", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.False(t, mr.Exists("lock:poster-client:1:2"))

	unlock2, err := locker.Lock(ctx, "poster-client:1:2", time.Minute)
	require.NoError(t, err)
	unlock2()
}

func TestRedisLockerReleaseKeepsForeignOwner(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker := NewRedisLocker(client)

	unlock, err := locker.Lock(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	// The lock expired and another process took it.
	require.NoError(t, mr.Set("lock:k", "someone-else"))
	unlock()

	val, err := mr.Get("lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}

func TestRedisLockerExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker := NewRedisLocker(client)

	_, err := locker.Lock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock, err := locker.Lock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	unlock()
}

func testLockerSerializes(t *testing.T, locker Locker) {
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "same", time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestRedisLockerSerializes(t *testing.T) {
	client, _ := setupTestRedis(t)
	locker := NewRedisLocker(client)
	locker.Retry = time.Millisecond
	testLockerSerializes(t, locker)
}

func TestMemoryLockerSerializes(t *testing.T) {
	testLockerSerializes(t, NewMemoryLocker())
}

func TestMemoryLockerKeysIndependent(t *testing.T) {
	locker := NewMemoryLocker()
	unlockA, err := locker.Lock(context.Background(), "a", 0)
	require.NoError(t, err)
	unlockB, err := locker.Lock(context.Background(), "b", 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "a", 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlockA()
	unlockA()
	unlockB()
	assert.Empty(t, locker.held)
}
