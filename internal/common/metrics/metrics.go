// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Total number of dispatched form submissions by terminal outcome",
		},
		[]string{"form", "outcome"},
	)

	FormSubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_rejected_total",
			Help: "Total number of submissions stopped before dispatch",
		},
		[]string{"form", "reason"},
	)

	FormSubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "form_submission_duration_seconds",
			Help: "Round-trip duration of dispatched submissions in seconds",
		},
		[]string{"form"},
	)

	FormSubmissionsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "form_submissions_in_flight",
			Help: "Number of outstanding submissions per form",
		},
		[]string{"form"},
	)

	ReferenceOptionsLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reference_options_loads_total",
			Help: "Total number of reference option loads by outcome",
		},
		[]string{"outcome"},
	)

	FeedFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of external feed fetches by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	DiagnosticsReported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnostics_reported_total",
			Help: "Total number of swallowed failures forwarded to diagnostics",
		},
		[]string{"code"},
	)
)

// Outcome label values shared by the counters above.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
