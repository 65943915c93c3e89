// Package middleware provides cross-cutting concerns for the
// aggregation engine: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks run throughput and latency, per-stage latency,
// and data-quality counters such as clamped and unattributed responses.
type PrometheusMetrics struct {
	runDuration   *prometheus.HistogramVec
	stageDuration *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	eventCounter  *prometheus.CounterVec
	systemGauges  *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and
// registers its metrics with the given registerer. Passing nil
// registers in the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aggregation_run_duration_seconds",
				Help:    "End-to-end duration of aggregation runs.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aggregation_stage_duration_seconds",
				Help:    "Duration of individual pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregation_runs_total",
				Help: "Aggregation runs by final status and completeness flag.",
			},
			[]string{"status", "completeness"},
		),
		eventCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregation_events_total",
				Help: "Data-quality events observed during normalization.",
			},
			[]string{"event"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aggregation_system_state",
				Help: "Current system state values for the aggregation engine.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	switch operation {
	case "run":
		pm.runDuration.WithLabelValues(labelOr(labels, "status", "unknown")).Observe(duration.Seconds())
	case "stage_execution":
		pm.stageDuration.WithLabelValues(labelOr(labels, "stage", "unknown")).Observe(duration.Seconds())
	default:
		pm.stageDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordCounter implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	if metric == "runs_total" {
		pm.runsTotal.WithLabelValues(
			labelOr(labels, "status", "unknown"),
			labelOr(labels, "completeness", ""),
		).Add(value)
		return
	}
	pm.eventCounter.WithLabelValues(metric).Add(value)
}

// RecordGauge implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

func labelOr(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}
