// Package metrics exposes prometheus instruments for uploads, charts and caches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goeda_uploads_total",
		Help: "Dataset uploads by format and outcome",
	}, []string{"format", "outcome"}) // outcome=success|cached|rejected|error

	parseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goeda_parse_duration_seconds",
		Help:    "Time spent reading and typing an uploaded file",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"format"})

	datasetRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "goeda_dataset_rows",
		Help:    "Row count of parsed datasets",
		Buckets: prometheus.ExponentialBuckets(10, 10, 6),
	})

	chartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goeda_charts_total",
		Help: "Charts requested by type and outcome",
	}, []string{"type", "outcome"}) // outcome=figure|info|warning|error

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goeda_cache_lookups_total",
		Help: "Cache lookups by cache and result",
	}, []string{"cache", "result"}) // result=hit|miss

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goeda_http_requests_total",
		Help: "HTTP requests by route and status class",
	}, []string{"route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goeda_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// RecordUpload counts an upload attempt.
func RecordUpload(format, outcome string) {
	if format == "" {
		format = "unknown"
	}
	uploadsTotal.WithLabelValues(format, outcome).Inc()
}

// ObserveParse records how long parsing a file took and how many rows it had.
func ObserveParse(format string, elapsed time.Duration, rows int) {
	parseDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	datasetRows.Observe(float64(rows))
}

// RecordChart counts a chart build.
func RecordChart(chartType, outcome string) {
	chartsTotal.WithLabelValues(chartType, outcome).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// ObserveHTTP records a served request.
func ObserveHTTP(route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, statusClass(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
