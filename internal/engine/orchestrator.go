package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

// RunStatus is the orchestrator's state machine for one aggregation
// run: Pending → Validating → Normalizing → Aggregating → Scoring →
// Completed | Failed. Validating failures abort the run with nothing
// persisted; once input has passed validation the compute stages are
// total functions, so later transitions to Failed indicate an upstream
// contract breach.
type RunStatus string

const (
	RunPending     RunStatus = "pending"
	RunValidating  RunStatus = "validating"
	RunNormalizing RunStatus = "normalizing"
	RunAggregating RunStatus = "aggregating"
	RunScoring     RunStatus = "scoring"
	RunCompleted   RunStatus = "completed"
	RunFailed      RunStatus = "failed"
)

// statusForStage maps a pipeline position to the run status the
// orchestrator reports while that stage executes. The two scoring
// stages share the Scoring status.
func statusForStage(index int) RunStatus {
	switch index {
	case 0:
		return RunValidating
	case 1:
		return RunNormalizing
	case 2:
		return RunAggregating
	default:
		return RunScoring
	}
}

// Stores bundles the collaborator boundaries one orchestrator reads
// from and writes to.
type Stores struct {
	Responses ports.ResponseStore
	Surveys   ports.SurveyStore
	Panels    ports.PanelStore
	Results   ports.ResultStore
}

// Orchestrator sequences aggregation runs. It is safe for concurrent
// use: all per-run state lives on the stack and in the immutable run
// State, so many (survey, subject) runs may execute in parallel against
// the same Orchestrator.
type Orchestrator struct {
	cfg      Config
	stores   Stores
	pipeline *Pipeline
	metrics  ports.MetricsCollector
	observer ports.RunObserver
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewOrchestrator assembles an orchestrator with the standard
// five-stage pipeline. metrics and observer may be nil.
func NewOrchestrator(
	cfg Config,
	stores Stores,
	log zerolog.Logger,
	metrics ports.MetricsCollector,
	observer ports.RunObserver,
) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if stores.Responses == nil || stores.Surveys == nil || stores.Panels == nil || stores.Results == nil {
		return nil, fmt.Errorf("all four collaborator stores are required")
	}

	pipeline, err := defaultPipeline(cfg, log, metrics)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		cfg:      cfg,
		stores:   stores,
		pipeline: pipeline,
		metrics:  metrics,
		observer: observer,
		log:      log,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}, nil
}

// RunAggregation executes one aggregation run for a (survey, subject)
// pair over the frozen response snapshot and persists the result.
// Re-running for the same pair appends a new result with a later
// timestamp; earlier results are never mutated.
//
// The read phase is bounded by the configured read timeout. A run may
// be cancelled through ctx any time before completion; cancellation
// after the result is persisted is meaningless.
//
// Callers receive either a complete result (possibly flagged NoData or
// partial) or a single *AggregationError.
func (o *Orchestrator) RunAggregation(ctx context.Context, surveyID, subjectID string) (*domain.AggregationResult, error) {
	runID := o.newID()
	start := o.now()
	log := o.log.With().
		Str("run_id", runID).
		Str("survey_id", surveyID).
		Str("subject_id", subjectID).
		Logger()

	if o.observer != nil {
		ctx = o.observer.RunStarted(ctx, surveyID, subjectID, runID)
	}

	result, err := o.run(ctx, log, runID, surveyID, subjectID)
	elapsed := o.now().Sub(start)

	if o.observer != nil {
		o.observer.RunCompleted(ctx, result, elapsed, err)
	}
	o.recordRun(result, elapsed, err)

	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("aggregation run failed")
		return nil, err
	}

	ev := log.Info().
		Dur("elapsed", elapsed).
		Str("completeness", string(result.Completeness))
	if result.Composite != nil {
		ev = ev.Float64("composite", *result.Composite)
	}
	ev.Msg("aggregation run completed")
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, log zerolog.Logger, runID, surveyID, subjectID string) (*domain.AggregationResult, error) {
	log.Debug().Str("status", string(RunPending)).Msg("run accepted")

	state, err := o.readInputs(ctx, surveyID, subjectID)
	if err != nil {
		return nil, o.fail(surveyID, subjectID, "read", err)
	}
	state = domain.With(state, domain.KeyRunID, runID)
	state = domain.With(state, domain.KeySurveyID, surveyID)
	state = domain.With(state, domain.KeySubjectID, subjectID)

	status := RunValidating
	stageIndex := 0
	final, err := o.pipeline.Execute(ctx, state, func(stage string, elapsed time.Duration, stageErr error) {
		status = statusForStage(stageIndex)
		stageIndex++
		log.Debug().
			Str("status", string(status)).
			Str("stage", stage).
			Dur("elapsed", elapsed).
			Msg("stage completed")
		if o.observer != nil {
			o.observer.StageCompleted(ctx, stage, elapsed, stageErr)
		}
		if o.metrics != nil {
			o.metrics.RecordLatency("stage_execution", elapsed, map[string]string{"stage": stage})
		}
	})
	if err != nil {
		return nil, o.fail(surveyID, subjectID, string(status), err)
	}

	result, ok := domain.Get(final, domain.KeyResult)
	if !ok || result == nil {
		return nil, o.fail(surveyID, subjectID, string(RunScoring),
			fmt.Errorf("pipeline completed without producing a result"))
	}
	result.ID = runID
	result.ComputedAt = o.now().UTC()

	if err := o.stores.Results.Save(ctx, result); err != nil {
		return nil, o.fail(surveyID, subjectID, "persist", err)
	}

	log.Debug().Str("status", string(RunCompleted)).Msg("result persisted")
	return result, nil
}

// readInputs gathers the run's frozen inputs from the collaborator
// stores under the configured read timeout, and derives the subject's
// category weight assignments from the panel.
func (o *Orchestrator) readInputs(ctx context.Context, surveyID, subjectID string) (domain.State, error) {
	readCtx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.ReadTimeoutSeconds)*time.Second)
	defer cancel()

	state := domain.NewState()

	traitWeights, err := o.stores.Surveys.GetTraitWeights(readCtx, surveyID)
	if err != nil {
		return state, fmt.Errorf("reading trait weights: %w", err)
	}
	traits, err := o.stores.Surveys.GetTraits(readCtx, surveyID)
	if err != nil {
		return state, fmt.Errorf("reading traits: %w", err)
	}
	panel, err := o.stores.Panels.GetPanel(readCtx, surveyID, subjectID)
	if err != nil {
		return state, fmt.Errorf("reading panel: %w", err)
	}
	responses, err := o.stores.Responses.GetResponses(readCtx, surveyID, subjectID)
	if err != nil {
		return state, fmt.Errorf("reading responses: %w", err)
	}

	state = domain.With(state, domain.KeyTraitWeights, traitWeights)
	state = domain.With(state, domain.KeyTraits, traits)
	state = domain.With(state, domain.KeyPanel, panel)
	state = domain.With(state, domain.KeyResponses, responses)
	state = domain.With(state, domain.KeyCategoryWeights, o.categoryWeights(panel))
	return state, nil
}

// categoryWeights derives the per-subject category weight assignments
// from the respondent panel. Respondents sharing a category must agree
// on its weight; on disagreement the first seen wins and the conflict
// is logged.
func (o *Orchestrator) categoryWeights(panel []domain.RespondentAssignment) []domain.Assignment {
	weights := make(map[string]int)
	var order []string
	for _, ra := range panel {
		cat := domain.CanonicalCategory(ra.Category)
		if prev, seen := weights[cat]; seen {
			if prev != ra.WeightPercent {
				o.log.Warn().
					Str("category", cat).
					Int("kept", prev).
					Int("ignored", ra.WeightPercent).
					Msg("conflicting category weights on panel")
			}
			continue
		}
		weights[cat] = ra.WeightPercent
		order = append(order, cat)
	}
	sort.Strings(order)

	assignments := make([]domain.Assignment, 0, len(order))
	for _, cat := range order {
		assignments = append(assignments, domain.Assignment{ID: cat, WeightPercent: weights[cat]})
	}
	return assignments
}

// fail classifies an error into the single structured AggregationError
// surfaced to callers.
func (o *Orchestrator) fail(surveyID, subjectID, stage string, err error) *AggregationError {
	kind := KindInvariant
	var invErr *domain.InvariantError
	var weightErr *domain.WeightError
	switch {
	case stage == "read":
		kind = KindRead
	case stage == "persist":
		kind = KindPersistence
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		kind = KindCancelled
	case errors.As(err, &weightErr):
		kind = KindValidation
	case errors.As(err, &invErr):
		kind = KindInvariant
	}
	return &AggregationError{
		SurveyID:  surveyID,
		SubjectID: subjectID,
		Stage:     stage,
		Kind:      kind,
		Err:       err,
	}
}

// recordRun emits the run-level metrics.
func (o *Orchestrator) recordRun(result *domain.AggregationResult, elapsed time.Duration, err error) {
	if o.metrics == nil {
		return
	}
	status := string(RunCompleted)
	if err != nil {
		status = string(RunFailed)
	}
	o.metrics.RecordLatency("run", elapsed, map[string]string{"status": status})
	labels := map[string]string{"status": status, "completeness": ""}
	if result != nil {
		labels["completeness"] = string(result.Completeness)
	}
	o.metrics.RecordCounter("runs_total", 1, labels)
}

// GetLatestResult returns the newest persisted result for the pair, or
// ports.ErrResultNotFound when no run has completed.
func (o *Orchestrator) GetLatestResult(ctx context.Context, surveyID, subjectID string) (*domain.AggregationResult, error) {
	return o.stores.Results.GetLatest(ctx, surveyID, subjectID)
}
