// Package metrics defines the Prometheus instrumentation shared across the
// application. All collectors register themselves via promauto at init time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rating lifecycle metrics
var (
	// RatingsSubmittedTotal tracks accepted rating submissions by star level
	// and derived sentiment label.
	RatingsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "Total rating submissions by star level and sentiment",
		},
		[]string{"rating", "sentiment"},
	)

	// RatingsDeletedTotal tracks hard deletes of rating records.
	RatingsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_deleted_total",
			Help: "Total rating records deleted",
		},
	)

	// RatingsImportedTotal tracks records inserted through bulk import.
	RatingsImportedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_imported_total",
			Help: "Total rating records inserted via bulk import",
		},
	)

	// ImportFailuresTotal tracks bulk imports that stopped mid-batch.
	ImportFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "import_failures_total",
			Help: "Total bulk imports aborted by a mid-batch insert failure",
		},
	)
)

// Analytics metrics
var (
	// AnalyticsComputeDuration tracks full-recompute latency per analytics
	// operation (summary, distribution, trends, sentiment).
	AnalyticsComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_compute_duration_seconds",
			Help:    "Analytics full-recompute duration by operation",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

// HTTP metrics
var (
	// HTTPErrorsTotal tracks handler errors reaching the error middleware,
	// labeled by structured error type.
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total handler errors by structured error type",
		},
		[]string{"type"},
	)
)

// Export metrics
var (
	// ExportsTotal tracks dataset exports by format.
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total dataset exports by format",
		},
		[]string{"format"},
	)
)
