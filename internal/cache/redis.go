// Package cache holds the Redis connection and the keyed locks built on it.
package cache

import (
	"context"
	"fmt"
	"time"

	"ms-restaurant/internal/logger"

	"github.com/go-redis/redis/v8"
)

// Connect opens a Redis client for addr and checks the connection.
func Connect(addr string, log *logger.Logger) (*redis.Client, error) {
	if log == nil {
		log = logger.Discard()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       0,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", addr, err))
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s", addr))
	return client, nil
}
