package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/orbita-hq/feedback-engine/internal/domain"
)

// BatchOutcome is one subject's outcome within a batch: a result on
// success, the run's error on failure. A failing subject never aborts
// the rest of the batch.
type BatchOutcome struct {
	SubjectID string
	Result    *domain.AggregationResult
	Err       error
}

// BatchRunner executes aggregation runs for many subjects of one survey
// in parallel. Runs share no mutable state beyond read access to the
// collaborator stores, so the only coordination needed is the
// concurrency cap and an optional rate limit on run starts to protect
// the shared response store.
type BatchRunner struct {
	orc     *Orchestrator
	limiter *rate.Limiter
}

// NewBatchRunner wraps an orchestrator for batch execution, taking
// concurrency and throttling settings from the orchestrator's config.
func NewBatchRunner(orc *Orchestrator) *BatchRunner {
	var limiter *rate.Limiter
	if orc.cfg.ReadRatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(orc.cfg.ReadRatePerSecond), 1)
	}
	return &BatchRunner{orc: orc, limiter: limiter}
}

// RunAll aggregates every subject of the survey, at most
// BatchConcurrency runs in flight at once. The returned outcomes are in
// subjectIDs order. RunAll only returns an error when the batch context
// is cancelled; per-subject failures are reported in their outcome.
func (b *BatchRunner) RunAll(ctx context.Context, surveyID string, subjectIDs []string) ([]BatchOutcome, error) {
	outcomes := make([]BatchOutcome, len(subjectIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.orc.cfg.BatchConcurrency)

	start := time.Now()
	for i, subjectID := range subjectIDs {
		i, subjectID := i, subjectID
		g.Go(func() error {
			if b.limiter != nil {
				if err := b.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			result, err := b.orc.RunAggregation(gctx, surveyID, subjectID)
			outcomes[i] = BatchOutcome{SubjectID: subjectID, Result: result, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	b.orc.log.Info().
		Str("survey_id", surveyID).
		Int("subjects", len(subjectIDs)).
		Dur("elapsed", time.Since(start)).
		Msg("batch aggregation completed")
	return outcomes, nil
}
