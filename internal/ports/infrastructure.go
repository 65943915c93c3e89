package ports

import (
	"context"
	"time"

	"github.com/orbita-hq/feedback-engine/internal/domain"
)

// MetricsCollector is the engine's hook into operational metrics.
// Implementations integrate with Prometheus or any comparable backend.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric, for events such as
	// completed runs, validation failures, or clamped values.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)
}

// RunObserver receives lifecycle notifications for aggregation runs,
// enabling tracing integrations without coupling the orchestrator to a
// specific backend. Implementations must be safe for concurrent runs;
// per-run state travels on the returned context, never on the observer.
type RunObserver interface {
	// RunStarted is called when a run enters Validating. The returned
	// context carries any per-run observability state (for example an
	// open span) and is threaded through the rest of the run.
	RunStarted(ctx context.Context, surveyID, subjectID, runID string) context.Context

	// StageCompleted is called after each pipeline stage, with the
	// stage's error if it failed.
	StageCompleted(ctx context.Context, stage string, elapsed time.Duration, err error)

	// RunCompleted is called exactly once per run with the final
	// outcome: a result on success, an error on failure.
	RunCompleted(ctx context.Context, result *domain.AggregationResult, elapsed time.Duration, err error)
}
