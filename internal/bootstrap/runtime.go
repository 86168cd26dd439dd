// Package bootstrap establishes the external connections a process needs before it can serve.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"devhub/internal/cache"
	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/middleware"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. Redis is optional: when it
// cannot be reached the returned client is nil and callers run without a cache.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "redis unavailable, continuing without cache",
			slog.String("addr", cfg.RedisURL),
			slog.String("error", err.Error()),
		)
		return db, nil, nil
	}
	middleware.Logger.InfoContext(ctx, "Redis connected", slog.String("addr", cfg.RedisURL))

	return db, rdb, nil
}
