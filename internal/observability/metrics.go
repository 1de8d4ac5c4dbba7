package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContentMutations counts successful writes by entity and operation.
	ContentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_content_mutations_total",
		Help: "Successful content mutations by entity and operation",
	}, []string{"entity", "operation"})

	// Revalidations counts revalidated page paths.
	Revalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_revalidations_total",
		Help: "Page paths marked stale, by result",
	}, []string{"result"})

	// PageCacheEvents counts page cache hits, misses and invalidations.
	PageCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_page_cache_events_total",
		Help: "Page cache events by type",
	}, []string{"event"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// LikeToggles counts like toggles by direction.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_like_toggles_total",
		Help: "Like toggles by resulting state",
	}, []string{"state"})

	// MailDispatches counts outbound mail by transport and result.
	MailDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_mail_dispatch_total",
		Help: "Outbound mail attempts by transport and result",
	}, []string{"transport", "result"})

	// AsyncFailures counts failed fire-and-forget operations.
	AsyncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_async_failures_total",
		Help: "Failed fire-and-forget operations",
	}, []string{"operation"})

	// StorageLatency records object storage call latency by operation.
	StorageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_storage_latency_seconds",
		Help:    "Object storage call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// DatabaseQueryLatency records repository call latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackStorage returns a function that records storage latency when called.
func TrackStorage(operation string) func() {
	start := time.Now()
	return func() {
		StorageLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
