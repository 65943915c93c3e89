package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.RunObserver = (*OTelRunObserver)(nil)

// OTelRunObserver traces aggregation runs with OpenTelemetry: one span
// per run, stage timings as span events, and the outcome recorded as
// span status and attributes. Per-run state travels on the context, so
// a single observer serves any number of concurrent runs.
type OTelRunObserver struct{}

// NewOTelRunObserver creates an OpenTelemetry run observer.
func NewOTelRunObserver() *OTelRunObserver {
	return &OTelRunObserver{}
}

// RunStarted implements the RunObserver interface. It opens the run
// span and returns the context carrying it.
func (o *OTelRunObserver) RunStarted(ctx context.Context, surveyID, subjectID, runID string) context.Context {
	tracer := otel.Tracer("aggregation-engine")
	ctx, _ = tracer.Start(ctx, "Orchestrator.RunAggregation",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("survey.id", surveyID),
			attribute.String("subject.id", subjectID),
		))
	return ctx
}

// StageCompleted implements the RunObserver interface, recording each
// stage as an event on the run span.
func (o *OTelRunObserver) StageCompleted(ctx context.Context, stage string, elapsed time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	attrs := []attribute.KeyValue{
		attribute.String("stage", stage),
		attribute.Int64("elapsed_us", elapsed.Microseconds()),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
	}
	span.AddEvent("stage completed", trace.WithAttributes(attrs...))
}

// RunCompleted implements the RunObserver interface, closing the run
// span with the final outcome.
func (o *OTelRunObserver) RunCompleted(ctx context.Context, result *domain.AggregationResult, elapsed time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("elapsed_ms", elapsed.Milliseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(attribute.String("completeness", string(result.Completeness)))
	if result.Composite != nil {
		span.SetAttributes(attribute.Float64("composite_score", *result.Composite))
	}
	span.SetStatus(codes.Ok, "")
}
