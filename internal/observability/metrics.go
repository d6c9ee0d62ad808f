package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmap_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheResults counts cache-aside lookups by key family and outcome (hit, miss, error).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmap_cache_results_total",
		Help: "Cache-aside lookups by key family and outcome",
	}, []string{"family", "outcome"})

	// SpotsAggregated counts spots produced per aggregate view.
	SpotsAggregated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmap_spots_aggregated_total",
		Help: "Number of spots produced by aggregate views",
	}, []string{"view"})

	// PinsBucketed records how many pins went into one aggregation run.
	PinsBucketed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pinmap_pins_bucketed",
		Help:    "Pins fed into a single bucketing run",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// FeedEntriesComposed counts feed entries by order mode.
	FeedEntriesComposed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmap_feed_entries_composed_total",
		Help: "Feed entries returned by order mode",
	}, []string{"order"})

	// FetchFailures counts data fetch failures that were degraded to empty results.
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmap_fetch_failures_total",
		Help: "Aggregate view fetch failures surfaced as empty results",
	}, []string{"view"})

	// WebSocketConnectionsTotal is the gauge of active activity-stream connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pinmap_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// NotificationsPublished counts activity events published to Redis.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pinmap_notifications_published_total",
		Help: "Activity events published by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pinmap_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	})
)
