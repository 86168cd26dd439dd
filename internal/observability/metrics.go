// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheRequests counts read-through lookups by key family and outcome (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_cache_requests_total",
		Help: "Cache lookups by key family and outcome",
	}, []string{"family", "outcome"})

	// CacheInvalidations counts invalidations by scope (flush, key).
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_cache_invalidations_total",
		Help: "Cache invalidations by scope",
	}, []string{"scope"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RedisCommandDuration observes Redis round trips by command.
	RedisCommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devhub_redis_command_duration_seconds",
		Help:    "Redis command latency by command",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"command"})

	// RelationToggles counts like/bookmark toggles by relation and resulting state.
	RelationToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_relation_toggles_total",
		Help: "Relation toggles by relation and resulting state",
	}, []string{"relation", "state"})
)

// RecordToggle increments RelationToggles for one toggle outcome.
func RecordToggle(relation string, active bool) {
	state := "removed"
	if active {
		state = "added"
	}
	RelationToggles.WithLabelValues(relation, state).Inc()
}
