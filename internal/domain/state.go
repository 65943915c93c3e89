package domain

import (
	"fmt"
	"maps"
)

// Key is a type-safe key for accessing values in a run State. The type
// parameter pins the value type at compile time, so stages never need
// runtime type assertions.
type Key[T any] struct{ name string }

// NewKey creates a Key with the given name and value type.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// State keys threaded through the aggregation pipeline. Each key is
// strongly typed to the value its producing stage writes.
var (
	// KeyTraits stores the survey's trait definitions, item included.
	KeyTraits = Key[[]Trait]{"traits"}

	// KeyTraitWeights stores the survey's trait weight assignments.
	KeyTraitWeights = Key[[]Assignment]{"trait_weights"}

	// KeyCategoryWeights stores the subject's category weight
	// assignments with canonical category IDs.
	KeyCategoryWeights = Key[[]Assignment]{"category_weights"}

	// KeyPanel stores the subject's respondent panel.
	KeyPanel = Key[[]RespondentAssignment]{"panel"}

	// KeyResponses stores the frozen response snapshot for the run.
	KeyResponses = Key[[]Response]{"responses"}

	// KeyScored stores the normalized, category-annotated responses
	// produced by the normalize stage.
	KeyScored = Key[[]ScoredResponse]{"scored"}

	// KeyCategoryScores stores per-trait category means, keyed by
	// trait ID then canonical category.
	KeyCategoryScores = Key[map[string]map[string]CategoryScore]{"category_scores"}

	// KeyTraitScores stores the weighted trait scores in survey order.
	KeyTraitScores = Key[[]TraitScore]{"trait_scores"}

	// KeyResult stores the assembled aggregation result.
	KeyResult = Key[*AggregationResult]{"result"}

	// Run identity keys, set by the orchestrator before the pipeline
	// starts and read by middleware for correlation.

	// KeyRunID stores the unique identifier of this aggregation run.
	KeyRunID = Key[string]{"run.id"}

	// KeySurveyID stores the survey being aggregated.
	KeySurveyID = Key[string]{"run.survey_id"}

	// KeySubjectID stores the subject being aggregated.
	KeySubjectID = Key[string]{"run.subject_id"}
)

// State is the immutable bag of values flowing through an aggregation
// pipeline. Writes return a new State and never touch the original, so
// a State can be shared across goroutines freely. By convention stages
// treat stored slices and maps as frozen: derived data always goes
// under a new key rather than mutating a fetched value in place.
type State struct {
	data map[string]any
}

// NewState returns an empty State ready for use.
func NewState() State {
	return State{data: make(map[string]any)}
}

// Get retrieves a typed value from the State. The second return reports
// whether the key is present with a value of the expected type.
func Get[T any](s State, key Key[T]) (T, bool) {
	var zero T
	value, exists := s.data[key.name]
	if !exists {
		return zero, false
	}
	val, ok := value.(T)
	if !ok {
		return zero, false
	}
	return val, true
}

// With returns a new State with the key set to value, leaving the
// receiver untouched.
func With[T any](s State, key Key[T], value T) State {
	newData := maps.Clone(s.data)
	if newData == nil {
		newData = make(map[string]any, 1)
	}
	newData[key.name] = value
	return State{data: newData}
}

// Len reports the number of values stored in the State.
func (s State) Len() int { return len(s.data) }

// String renders the State for debugging.
func (s State) String() string {
	return fmt.Sprintf("State%v", s.data)
}
