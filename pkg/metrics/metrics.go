package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingestion_records_received_total",
			Help: "Total number of raw records handed to the pipeline",
		},
	)

	RecordsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_records_rejected_total",
			Help: "Total number of records rejected by validation, by reason",
		},
		[]string{"reason"},
	)

	RecordsDuplicateTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingestion_records_duplicate_total",
			Help: "Total number of records skipped as duplicates",
		},
	)

	RecordsInsertedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingestion_records_inserted_total",
			Help: "Total number of regulation rows inserted",
		},
	)

	RecordsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingestion_records_failed_total",
			Help: "Total number of records whose write transaction failed",
		},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Total number of pipeline runs by final status",
		},
		[]string{"status"},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestion_run_duration_seconds",
			Help:    "Wall-clock duration of a full pipeline run in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	LastRunTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingestion_last_run_timestamp_seconds",
			Help: "Unix timestamp of the most recent run, regardless of outcome",
		},
	)

	LastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingestion_last_success_timestamp_seconds",
			Help: "Unix timestamp of the most recent completed run",
		},
	)
)

var (
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through the circuit breaker by state",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total failed requests through the circuit breaker",
		},
		[]string{"name"},
	)
)

func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		RecordsReceivedTotal,
		RecordsRejectedTotal,
		RecordsDuplicateTotal,
		RecordsInsertedTotal,
		RecordsFailedTotal,
		RunsTotal,
		RunDuration,
		LastRunTimestamp,
		LastSuccessTimestamp,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func ObserveRunDuration(d time.Duration, status string) {
	RunDuration.WithLabelValues(status).Observe(d.Seconds())
}
