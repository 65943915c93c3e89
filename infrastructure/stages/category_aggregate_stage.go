package stages

import (
	"context"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.Stage = (*CategoryAggregateStage)(nil)

// CategoryAggregateStage groups the normalized scores by (trait,
// category) and produces the arithmetic mean per group. Every
// respondent within a category carries equal influence, as does every
// answered item within a trait. A category with zero contributing
// responses is absent from the output, which is what allows weight
// rescaling downstream.
type CategoryAggregateStage struct{}

// NewCategoryAggregateStage creates the category aggregation stage.
func NewCategoryAggregateStage() *CategoryAggregateStage {
	return &CategoryAggregateStage{}
}

// Name returns the stage identifier.
func (s *CategoryAggregateStage) Name() string { return StageAggregateCategories }

// Validate implements ports.Stage; the stage has no configuration.
func (s *CategoryAggregateStage) Validate() error { return nil }

// Execute writes the per-trait category means under KeyCategoryScores.
// Aggregation is a total function over the scored set; it cannot fail
// on well-typed input.
func (s *CategoryAggregateStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	scored, ok := domain.Get(state, domain.KeyScored)
	if !ok {
		return state, missing("scored")
	}
	traitWeights, ok := domain.Get(state, domain.KeyTraitWeights)
	if !ok {
		return state, missing("trait_weights")
	}

	byTrait := make(map[string]map[string]domain.CategoryScore, len(traitWeights))
	for _, tw := range traitWeights {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		scores := domain.AggregateByCategory(scored, tw.ID)
		if len(scores) > 0 {
			byTrait[tw.ID] = scores
		}
	}

	return domain.With(state, domain.KeyCategoryScores, byTrait), nil
}
