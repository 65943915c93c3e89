package ports

import (
	"context"

	"github.com/orbita-hq/feedback-engine/internal/domain"
)

// ResponseStore is the engine's read boundary to the response-collection
// subsystem. Responses returned for a run are assumed final: no
// in-flight submissions exist once aggregation starts.
type ResponseStore interface {
	// GetResponses returns the frozen response snapshot for one
	// (survey, subject) pair. An empty slice is a valid answer and
	// produces a NoData result, not an error.
	GetResponses(ctx context.Context, surveyID, subjectID string) ([]domain.Response, error)
}

// SurveyStore is the engine's read boundary to the survey/trait
// definition subsystem.
type SurveyStore interface {
	// GetTraitWeights returns the survey's trait weight assignments.
	GetTraitWeights(ctx context.Context, surveyID string) ([]domain.Assignment, error)

	// GetTraits returns the survey's trait definitions with their items.
	GetTraits(ctx context.Context, surveyID string) ([]domain.Trait, error)
}

// PanelStore is the engine's read boundary to the run-initiation
// subsystem, which owns the per-subject respondent panel and its
// category weightages.
type PanelStore interface {
	// GetPanel returns the subject's respondent assignments for the
	// survey, category weights included.
	GetPanel(ctx context.Context, surveyID, subjectID string) ([]domain.RespondentAssignment, error)
}

// ResultStore persists aggregation results. Records are append-only,
// keyed by (survey_id, subject_id, computed_at): a re-run always writes
// a new record, so concurrent completions for the same subject never
// conflict.
type ResultStore interface {
	// Save appends one result record. Implementations must never
	// overwrite an existing record.
	Save(ctx context.Context, result *domain.AggregationResult) error

	// GetLatest returns the result with the newest ComputedAt for the
	// pair, or ErrResultNotFound when no run has completed.
	GetLatest(ctx context.Context, surveyID, subjectID string) (*domain.AggregationResult, error)
}
