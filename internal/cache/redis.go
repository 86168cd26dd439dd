// Package cache provides the read-through query cache and its Redis backing store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

// instrumentationHook records latency for every command and counts failures.
// redis.Nil is a cache miss, not a failure.
type instrumentationHook struct{}

func (instrumentationHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (instrumentationHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		observe(cmd.Name(), start, err)
		return err
	}
}

func (instrumentationHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		observe("pipeline", start, err)
		return err
	}
}

func observe(command string, start time.Time, err error) {
	observability.RedisCommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(command).Inc()
	}
}

// NewRedisClient builds a client for addr, which is either host:port or a redis:// URL.
func NewRedisClient(addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(instrumentationHook{})
	return client, nil
}

// ConnectRedis builds a client and pings it; the caller decides how to degrade on error.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client, err := NewRedisClient(addr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
