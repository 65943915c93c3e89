// Package stages provides the ports.Stage implementations that make up
// the aggregation pipeline: weight validation, response normalization,
// category aggregation, trait scoring, and composite scoring.
package stages

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Stage names, used as pipeline identifiers and metrics labels.
const (
	StageValidateWeights     = "validate_weights"
	StageNormalize           = "normalize"
	StageAggregateCategories = "aggregate_categories"
	StageScoreTraits         = "score_traits"
	StageScoreComposite      = "score_composite"
)

// Common errors returned by pipeline stages.
var (
	// ErrMissingStateValue is returned when a stage's required input is
	// absent from the run state, indicating a mis-assembled pipeline.
	ErrMissingStateValue = errors.New("required value missing from run state")
)

// Package-level validator instance for stage configuration validation.
var validate = validator.New()

func missing(key string) error {
	return fmt.Errorf("%w: %s", ErrMissingStateValue, key)
}
