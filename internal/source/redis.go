// internal/source/redis.go
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSource pops log lines from a Redis list fed by a log shipper
// (e.g. rsyslog pushing kernel lines onto a queue). It behaves like a
// follow-mode source: Next blocks until a line arrives.
type RedisSource struct {
	client *redis.Client
	queue  string
}

// NewRedisSource connects to Redis and verifies the connection
func NewRedisSource(addr, queue string) (*RedisSource, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		PoolSize:        10,
		MinIdleConns:    3,
		ConnMaxIdleTime: 240 * time.Second,
		DialTimeout:     2 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisSource{client: client, queue: queue}, nil
}

// Next blocks until a line is available on the queue
func (s *RedisSource) Next(ctx context.Context) (string, error) {
	for {
		vals, err := s.client.BLPop(ctx, 5*time.Second, s.queue).Result()
		if errors.Is(err, redis.Nil) {
			continue // queue empty, keep waiting
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("failed to pop from queue %s: %w", s.queue, err)
		}
		return vals[1], nil
	}
}

// Close closes the Redis connection
func (s *RedisSource) Close() error {
	return s.client.Close()
}
