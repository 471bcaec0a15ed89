// Package metrics defines the Prometheus metric collectors used by the
// search engine and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the search engine.
type Metrics struct {
	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	SearchResultsCount  prometheus.Histogram
	SubQueryLatency     *prometheus.HistogramVec
	DegradedQueries     prometheus.Counter
	ScoringSkipsTotal   prometheus.Counter
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	SnapshotEntries     *prometheus.GaugeVec
	SnapshotGrams       prometheus.Gauge
	SnapshotReloads     *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by entry kind and outcome (hit, zero_result, invalid, error).",
			},
			[]string{"kind", "outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "End-to-end search latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		SubQueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_subquery_latency_seconds",
				Help:    "Per-entry-kind sub-query latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"kind"},
		),
		DegradedQueries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_degraded_queries_total",
				Help: "Queries that returned partial results after a sub-query timeout.",
			},
		),
		ScoringSkipsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_scoring_skips_total",
				Help: "Candidates skipped due to scoring errors.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of query-cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of query-cache misses.",
			},
		),
		SnapshotEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "index_snapshot_entries",
				Help: "Entries in the live snapshot, per kind.",
			},
			[]string{"kind"},
		),
		SnapshotGrams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_snapshot_grams",
				Help: "Distinct n-grams in the live snapshot.",
			},
		),
		SnapshotReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_snapshot_reloads_total",
				Help: "Snapshot reload attempts by status.",
			},
			[]string{"status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
	}

	prometheus.MustRegister(
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.SubQueryLatency,
		m.DegradedQueries,
		m.ScoringSkipsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SnapshotEntries,
		m.SnapshotGrams,
		m.SnapshotReloads,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
