// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthEvents counts authentication outcomes, e.g. login/success, refresh/rejected.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_auth_events_total",
		Help: "Authentication events by action and outcome",
	}, []string{"action", "outcome"})

	// ContentWrites counts successful writes to posts and comments.
	ContentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_content_writes_total",
		Help: "Successful content writes by resource and action",
	}, []string{"resource", "action"})

	// CacheLookups counts cache-aside lookups by cache and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_cache_lookups_total",
		Help: "Cache lookups by cache name and result (hit, miss, error)",
	}, []string{"cache", "result"})
)

// RecordAuth increments the auth event counter.
func RecordAuth(action, outcome string) {
	AuthEvents.WithLabelValues(action, outcome).Inc()
}

// RecordWrite increments the content write counter.
func RecordWrite(resource, action string) {
	ContentWrites.WithLabelValues(resource, action).Inc()
}
