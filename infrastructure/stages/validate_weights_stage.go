package stages

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.Stage = (*ValidateWeightsStage)(nil)

// ValidateWeightsStage checks the run's weight configuration before any
// computation starts. A structural error (negative weight, empty
// assignment list) fails the run; a sum other than 100 is only logged,
// because aggregation re-normalizes over contributing entries anyway.
type ValidateWeightsStage struct {
	log zerolog.Logger
}

// NewValidateWeightsStage creates the weight validation stage.
func NewValidateWeightsStage(log zerolog.Logger) *ValidateWeightsStage {
	return &ValidateWeightsStage{log: log}
}

// Name returns the stage identifier.
func (s *ValidateWeightsStage) Name() string { return StageValidateWeights }

// Validate implements ports.Stage; the stage has no configuration.
func (s *ValidateWeightsStage) Validate() error { return nil }

// Execute validates both weighting levels: the survey's trait weights
// and the subject's category weights. It returns the state unchanged on
// success; any error here aborts the run before computation.
func (s *ValidateWeightsStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	traitWeights, ok := domain.Get(state, domain.KeyTraitWeights)
	if !ok {
		return state, missing("trait_weights")
	}
	categoryWeights, ok := domain.Get(state, domain.KeyCategoryWeights)
	if !ok {
		return state, missing("category_weights")
	}

	status, err := domain.ValidateAssignments(traitWeights)
	if err != nil {
		return state, fmt.Errorf("trait weights: %w", err)
	}
	if status != domain.WeightsComplete {
		s.log.Warn().Str("status", string(status)).Msg("trait weights do not sum to 100, rescaling at aggregation time")
	}

	status, err = domain.ValidateAssignments(categoryWeights)
	if err != nil {
		return state, fmt.Errorf("category weights: %w", err)
	}
	if status != domain.WeightsComplete {
		s.log.Warn().Str("status", string(status)).Msg("category weights do not sum to 100, rescaling at aggregation time")
	}

	return state, nil
}
