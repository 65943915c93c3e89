package stages

import (
	"context"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.Stage = (*TraitScoreStage)(nil)

// TraitScoreStage combines each trait's category means into a single
// trait score using the subject's category weights. Categories without
// data are excluded and the kept weights rescale to sum to 100; a trait
// with no contributing category at all is marked Unscored.
type TraitScoreStage struct{}

// NewTraitScoreStage creates the trait scoring stage.
func NewTraitScoreStage() *TraitScoreStage {
	return &TraitScoreStage{}
}

// Name returns the stage identifier.
func (s *TraitScoreStage) Name() string { return StageScoreTraits }

// Validate implements ports.Stage; the stage has no configuration.
func (s *TraitScoreStage) Validate() error { return nil }

// Execute writes one TraitScore per assigned trait, in survey order,
// under KeyTraitScores.
func (s *TraitScoreStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	categoryScores, ok := domain.Get(state, domain.KeyCategoryScores)
	if !ok {
		return state, missing("category_scores")
	}
	categoryWeights, ok := domain.Get(state, domain.KeyCategoryWeights)
	if !ok {
		return state, missing("category_weights")
	}
	traitWeights, ok := domain.Get(state, domain.KeyTraitWeights)
	if !ok {
		return state, missing("trait_weights")
	}

	traitScores := make([]domain.TraitScore, 0, len(traitWeights))
	for _, tw := range traitWeights {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		traitScores = append(traitScores, domain.ScoreTrait(tw.ID, categoryScores[tw.ID], categoryWeights))
	}

	return domain.With(state, domain.KeyTraitScores, traitScores), nil
}
