// Package metrics defines the Prometheus metric collectors used across the
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	PagesFetchedTotal    *prometheus.CounterVec
	DocsIndexedTotal     prometheus.Counter
	TermsCompressedTotal *prometheus.CounterVec
	CodecErrorsTotal     *prometheus.CounterVec
	CompressedBits       *prometheus.HistogramVec
	SearchQueriesTotal   *prometheus.CounterVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
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
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		PagesFetchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pages_fetched_total",
				Help: "Total pages fetched by the crawler, by outcome (ok, error).",
			},
			[]string{"outcome"},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents indexed.",
			},
		),
		TermsCompressedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terms_compressed_total",
				Help: "Total posting lists compressed, by codec.",
			},
			[]string{"codec"},
		),
		CodecErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codec_errors_total",
				Help: "Total per-term compression failures, by codec.",
			},
			[]string{"codec"},
		),
		CompressedBits: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "compressed_postings_bits",
				Help:    "Compressed posting-list size in bits, by codec.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 12),
			},
			[]string{"codec"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total term lookups by result type (hit, miss, error).",
			},
			[]string{"result_type"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of term cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of term cache misses.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.PagesFetchedTotal,
		m.DocsIndexedTotal,
		m.TermsCompressedTotal,
		m.CodecErrorsTotal,
		m.CompressedBits,
		m.SearchQueriesTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
