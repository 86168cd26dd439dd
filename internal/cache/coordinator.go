package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"devhub/internal/middleware"
	"devhub/internal/observability"
)

// Coordinator owns the read-through policy for query results and the
// invalidation rules applied after writes commit.
type Coordinator struct {
	store Store
}

// NewCoordinator wraps store; a nil store disables caching.
func NewCoordinator(store Store) *Coordinator {
	if store == nil {
		store = NoopStore{}
	}
	return &Coordinator{store: store}
}

// Aside serves key from the store into dest, or calls fetch to fill dest and
// stores the result for ttl. Store failures degrade to a miss and are only logged.
func (c *Coordinator) Aside(ctx context.Context, family, key string, ttl time.Duration, dest any, fetch func(context.Context) error) error {
	raw, found, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		observability.CacheRequests.WithLabelValues(family, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheRequests.WithLabelValues(family, "hit").Inc()
			return nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
		observability.CacheRequests.WithLabelValues(family, "error").Inc()
	default:
		observability.CacheRequests.WithLabelValues(family, "miss").Inc()
	}

	if err := fetch(ctx); err != nil {
		return err
	}

	b, err := json.Marshal(dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil
	}
	if err := c.store.Set(ctx, key, b, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// InvalidateAll drops every cached query result. Called after post writes commit.
func (c *Coordinator) InvalidateAll(ctx context.Context) {
	observability.CacheInvalidations.WithLabelValues("flush").Inc()
	if err := c.store.Flush(ctx); err != nil {
		middleware.Logger.ErrorContext(ctx, "cache flush failed", slog.String("error", err.Error()))
	}
}

// InvalidateRecentActivity drops only the activity feed. Called after comment writes commit.
func (c *Coordinator) InvalidateRecentActivity(ctx context.Context) {
	observability.CacheInvalidations.WithLabelValues("key").Inc()
	if err := c.store.Delete(ctx, RecentActivityKey); err != nil {
		middleware.Logger.ErrorContext(ctx, "cache delete failed",
			slog.String("key", RecentActivityKey),
			slog.String("error", err.Error()),
		)
	}
}
