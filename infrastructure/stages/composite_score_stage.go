package stages

import (
	"context"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.Stage = (*CompositeScoreStage)(nil)

// CompositeScoreStage folds the trait scores into the subject's single
// composite score under the survey's trait weights, applying the same
// rescaling policy one level up: Unscored traits are excluded and the
// remaining trait weights grow proportionally. It assembles the
// AggregationResult; the orchestrator stamps identity and timestamp
// when persisting.
type CompositeScoreStage struct{}

// NewCompositeScoreStage creates the composite scoring stage.
func NewCompositeScoreStage() *CompositeScoreStage {
	return &CompositeScoreStage{}
}

// Name returns the stage identifier.
func (s *CompositeScoreStage) Name() string { return StageScoreComposite }

// Validate implements ports.Stage; the stage has no configuration.
func (s *CompositeScoreStage) Validate() error { return nil }

// Execute writes the assembled result under KeyResult. A subject with
// zero usable responses gets a nil composite and the NoData flag, never
// a zero score.
func (s *CompositeScoreStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	traitScores, ok := domain.Get(state, domain.KeyTraitScores)
	if !ok {
		return state, missing("trait_scores")
	}
	traitWeights, ok := domain.Get(state, domain.KeyTraitWeights)
	if !ok {
		return state, missing("trait_weights")
	}
	scored, ok := domain.Get(state, domain.KeyScored)
	if !ok {
		return state, missing("scored")
	}
	surveyID, ok := domain.Get(state, domain.KeySurveyID)
	if !ok {
		return state, missing("run.survey_id")
	}
	subjectID, ok := domain.Get(state, domain.KeySubjectID)
	if !ok {
		return state, missing("run.subject_id")
	}

	composite, flag := domain.ScoreComposite(traitScores, traitWeights)

	result := &domain.AggregationResult{
		SurveyID:     surveyID,
		SubjectID:    subjectID,
		PerTrait:     traitScores,
		Composite:    composite,
		Completeness: flag,
		Clamped:      domain.CollectClamped(scored),
	}

	return domain.With(state, domain.KeyResult, result), nil
}
