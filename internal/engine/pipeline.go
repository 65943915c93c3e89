package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/orbita-hq/feedback-engine/infrastructure/stages"
	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

// StageHook is called after each pipeline stage completes, with the
// stage's error when it failed. Used by the orchestrator for status
// tracking and observability.
type StageHook func(stage string, elapsed time.Duration, err error)

// Pipeline executes stages sequentially, each stage's output state
// feeding the next. It checks context cancellation between stages and
// wraps stage failures with the failing stage's name.
type Pipeline struct {
	stages []ports.Stage
}

// NewPipeline validates and assembles a pipeline from the given stages.
// Stage names must be unique within a pipeline.
func NewPipeline(sts ...ports.Stage) (*Pipeline, error) {
	if len(sts) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one stage")
	}
	seen := make(map[string]struct{}, len(sts))
	for _, s := range sts {
		if _, dup := seen[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate stage name %q", s.Name())
		}
		seen[s.Name()] = struct{}{}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.Name(), err)
		}
	}
	return &Pipeline{stages: sts}, nil
}

// Stages returns the pipeline's stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Execute runs the stages in order over the initial state. hook may be
// nil. On failure the returned error names the failing stage; the
// state returned is the last successful stage's output.
func (p *Pipeline) Execute(ctx context.Context, state domain.State, hook StageHook) (domain.State, error) {
	current := state
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return current, err
		}

		start := time.Now()
		next, err := s.Execute(ctx, current)
		if hook != nil {
			hook(s.Name(), time.Since(start), err)
		}
		if err != nil {
			return current, fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		current = next
	}
	return current, nil
}

// defaultPipeline assembles the standard five-stage aggregation
// pipeline from the engine configuration.
func defaultPipeline(cfg Config, log zerolog.Logger, metrics ports.MetricsCollector) (*Pipeline, error) {
	normalize, err := stages.NewNormalizeStage(stages.NormalizeConfig{
		DefaultScaleMin:    cfg.DefaultScaleMin,
		DefaultScaleMax:    cfg.DefaultScaleMax,
		FailOnUnattributed: cfg.FailOnUnattributed,
	}, log, metrics)
	if err != nil {
		return nil, err
	}

	return NewPipeline(
		stages.NewValidateWeightsStage(log),
		normalize,
		stages.NewCategoryAggregateStage(),
		stages.NewTraitScoreStage(),
		stages.NewCompositeScoreStage(),
	)
}
