package domain

import "time"

// CompletenessFlag summarizes how much of the configured panel and
// trait set actually contributed to a result.
type CompletenessFlag string

const (
	// CompletenessFull means every assigned trait and category
	// contributed at least one response.
	CompletenessFull CompletenessFlag = "full"

	// CompletenessPartial means the result was computed over a proper
	// subset of the assigned traits or categories, with weights
	// rescaled proportionally over the contributors.
	CompletenessPartial CompletenessFlag = "partial"

	// CompletenessNoData means the subject received zero usable
	// responses. The composite score is nil, never zero.
	CompletenessNoData CompletenessFlag = "no_data"
)

// CategoryScore is the arithmetic mean of all normalized scores one
// respondent category produced for one (subject, trait) pair. Every
// respondent in the category carries equal influence, as does every
// answered item of the trait.
type CategoryScore struct {
	// Category is the canonical category label.
	Category string `json:"category"`

	// Score is the mean normalized score in [0,100].
	Score float64 `json:"score"`

	// Responses counts the normalized answers behind the mean.
	Responses int `json:"responses"`
}

// TraitScore is the category-weighted score of one trait for one
// subject, with the contribution bookkeeping reporting needs.
type TraitScore struct {
	TraitID string `json:"trait_id"`

	// Score is the weighted trait score in [0,100]. Meaningless when
	// Unscored is true.
	Score float64 `json:"score"`

	// Unscored marks a trait with zero contributing categories. Unscored
	// traits are excluded from the composite and the remaining trait
	// weights rescale proportionally.
	Unscored bool `json:"unscored"`

	// Completeness is kept categories over assigned categories, for
	// reporting only; it never alters the arithmetic.
	Completeness float64 `json:"completeness"`

	// ContributingCategories lists assigned categories with data, sorted.
	ContributingCategories []string `json:"contributing_categories"`

	// MissingCategories lists assigned categories without data, sorted.
	MissingCategories []string `json:"missing_categories"`
}

// ClampFlag records one raw value that fell outside its item's declared
// bounds and was clamped rather than discarded.
type ClampFlag struct {
	RespondentID string `json:"respondent_id"`
	ItemID       string `json:"item_id"`
}

// AggregationResult is the durable output of one aggregation run for a
// (survey, subject) pair. Results are append-only: a re-run writes a new
// record with a later ComputedAt and never mutates an earlier one.
type AggregationResult struct {
	// ID uniquely identifies this run's result record.
	ID string `json:"id"`

	SurveyID  string `json:"survey_id"`
	SubjectID string `json:"subject_id"`

	// PerTrait holds one entry per assigned trait, including Unscored
	// ones, in the survey's trait order.
	PerTrait []TraitScore `json:"per_trait"`

	// Composite is the trait-weighted composite score in [0,100], or
	// nil when no trait could be scored. A nil composite must never be
	// presented as a real score of zero.
	Composite *float64 `json:"composite_score"`

	Completeness CompletenessFlag `json:"completeness_flag"`

	// Clamped lists out-of-range raw values encountered during
	// normalization.
	Clamped []ClampFlag `json:"clamped,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}
