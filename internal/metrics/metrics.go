// Package metrics exposes Prometheus instrumentation for playout builds.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build results used as the "result" label
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultSkipped  = "skipped"
	ResultCanceled = "canceled"
)

var (
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playout_builds_total",
			Help: "Total number of playout build passes by result",
		},
		[]string{"result"},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playout_build_duration_seconds",
			Help:    "Wall time of a playout build pass in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	BuildsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playout_builds_in_progress",
			Help: "Number of build passes currently running",
		},
	)

	ItemsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playout_items_generated_total",
			Help: "Total number of timeline items written, by filler kind",
		},
		[]string{"filler_kind"},
	)

	GapsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playout_gaps_recorded_total",
			Help: "Total number of uncovered timeline intervals recorded",
		},
	)

	ConfigurationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playout_configuration_errors_total",
			Help: "Schedule entries skipped because their content source could not be used",
		},
		[]string{"reason"},
	)

	HorizonSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playout_horizon_seconds",
			Help: "Seconds of generated timeline ahead of now per playout",
		},
		[]string{"playout_id"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playout_library_circuit_breaker_state",
			Help: "State of the library lookup circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playout_library_requests_total",
			Help: "Library lookups through the circuit breaker by outcome",
		},
		[]string{"name", "outcome"},
	)

	TriggerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playout_trigger_messages_total",
			Help: "Build trigger messages received by outcome",
		},
		[]string{"outcome"},
	)
)
