// Package metrics defines the Prometheus collectors of the tour log.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRounds counts push-then-pull rounds by result: ok, push_failed,
	// fetch_failed, stale, store_failed.
	SyncRounds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wonderland_sync_rounds_total",
			Help: "Push-then-pull sync rounds by result",
		},
		[]string{"result"},
	)

	// SyncDroppedRecords counts remote records dropped as malformed.
	SyncDroppedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wonderland_sync_dropped_records_total",
			Help: "Remote records dropped during sync because they failed validation",
		},
	)

	// SyncDuration observes the wall time of a sync round.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wonderland_sync_duration_seconds",
			Help:    "Duration of push-then-pull sync rounds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// InsightRequests counts insight requests by outcome kind ("ok" or an
	// InsightKind).
	InsightRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wonderland_insight_requests_total",
			Help: "Insight requests by outcome",
		},
		[]string{"outcome"},
	)

	// Records is the current size of the record store.
	Records = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wonderland_records",
			Help: "Number of records held by the device store",
		},
	)

	// HubSnapshots counts hub overwrite requests by result.
	HubSnapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wonderland_hub_snapshots_total",
			Help: "Snapshot overwrite requests received by the hub",
		},
		[]string{"result"},
	)
)

var (
	// HTTPRequests counts API requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wonderland_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wonderland_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
