// Package domain contains the pure domain models and computation for the
// feedback aggregation engine: surveys, traits, responses, normalization,
// category aggregation, and weighted scoring. Nothing in this package
// performs I/O; all functions are deterministic over their inputs.
package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SurveyStatus tracks the lifecycle of a survey definition.
// Only active surveys are eligible for aggregation runs.
type SurveyStatus string

const (
	// SurveyDraft marks a survey still being edited by an administrator.
	// Weight sums are checked but not enforced in this state.
	SurveyDraft SurveyStatus = "draft"

	// SurveyActive marks a survey that has passed activation validation
	// and may collect responses and be aggregated.
	SurveyActive SurveyStatus = "active"

	// SurveyClosed marks a survey whose collection window has ended.
	// Closed surveys can still be aggregated over their frozen responses.
	SurveyClosed SurveyStatus = "closed"
)

// Survey defines one feedback campaign: the ordered set of traits being
// assessed and the administrator-assigned weight each trait carries in
// the composite score. Trait weights are validated at activation time and
// never mutated during aggregation.
type Survey struct {
	// ID uniquely identifies the survey.
	ID string `json:"id"`

	// Name is the human-readable survey title.
	Name string `json:"name"`

	// Status is the survey lifecycle state.
	Status SurveyStatus `json:"status"`

	// TraitWeights lists the traits in the survey with their intended
	// percentage contribution to the composite score. Administrators
	// enter integers intended to sum to 100.
	TraitWeights []Assignment `json:"trait_weights"`
}

// ResponseType identifies how an item is answered and therefore how its
// raw values are normalized. Only rating, boolean, and multiple_choice
// items contribute to numeric scoring; text items are collected but
// excluded from aggregation.
type ResponseType string

const (
	// TypeRating is a bounded numeric scale item (for example 1-5).
	TypeRating ResponseType = "rating"

	// TypeBoolean is a yes/no item.
	TypeBoolean ResponseType = "boolean"

	// TypeMultipleChoice is a single-select item whose options carry
	// administrator-defined score weights.
	TypeMultipleChoice ResponseType = "multiple_choice"

	// TypeText is a free-text item. Text responses never enter the
	// numeric aggregation.
	TypeText ResponseType = "text"
)

// Scorable reports whether responses of this type participate in
// numeric aggregation.
func (t ResponseType) Scorable() bool { return t != TypeText }

// ScaleBounds declares the inclusive raw-value range of a rating item.
type ScaleBounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// DefaultScale is used for rating items that do not declare bounds.
var DefaultScale = ScaleBounds{Min: 1, Max: 5}

// ChoiceOption is one selectable option of a multiple_choice item.
type ChoiceOption struct {
	// ID uniquely identifies the option within its item.
	ID string `json:"id" yaml:"id"`

	// Label is the text shown to respondents.
	Label string `json:"label" yaml:"label"`

	// Weight is the administrator-defined score (0-100) awarded when
	// this option is selected. When nil, the option scores by ordinal
	// position: ordinal/(count-1)*100.
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Item is one prompt within a trait.
type Item struct {
	// ID uniquely identifies the item.
	ID string `json:"id"`

	// TraitID links the item to its owning trait.
	TraitID string `json:"trait_id"`

	// Prompt is the question text shown to respondents.
	Prompt string `json:"prompt"`

	// Type determines the normalization branch applied to answers.
	Type ResponseType `json:"type"`

	// Scale bounds a rating item's raw values. Nil means DefaultScale.
	Scale *ScaleBounds `json:"scale,omitempty"`

	// Options lists the choices of a multiple_choice item, in display
	// order. Empty for other types.
	Options []ChoiceOption `json:"options,omitempty"`
}

// Bounds returns the item's effective rating scale, falling back to
// DefaultScale when none is declared.
func (i Item) Bounds() ScaleBounds {
	if i.Scale != nil {
		return *i.Scale
	}
	return DefaultScale
}

// Trait is a competency dimension being assessed (for example
// "Leadership"), composed of scorable items.
type Trait struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// RespondentAssignment links one respondent to a subject's panel for a
// single survey execution, with the relationship category and the
// category's intended weight. Category weights are per-subject because
// different subjects have different panel compositions.
type RespondentAssignment struct {
	RespondentID string `json:"respondent_id"`

	// Category is the free-form relationship label ("self", "peer",
	// "manager", "direct_report", ...). Grouping is done on the
	// canonical form, see CanonicalCategory.
	Category string `json:"category"`

	// WeightPercent is the administrator-entered integer weight of the
	// category this respondent belongs to.
	WeightPercent int `json:"weight_percent"`
}

// categoryFolder lowercases labels without locale-specific casing
// surprises (language.Und keeps the folding language-neutral).
var categoryFolder = cases.Lower(language.Und)

// CanonicalCategory folds a free-form category label into the form used
// for grouping and weight lookup: case-folded, trimmed, with interior
// whitespace and hyphens collapsed to single underscores. "Direct Report",
// "direct-report" and "direct_report" all canonicalize identically.
func CanonicalCategory(label string) string {
	folded := categoryFolder.String(strings.TrimSpace(label))
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '_'
	})
	return strings.Join(fields, "_")
}
