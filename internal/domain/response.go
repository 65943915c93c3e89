package domain

import "fmt"

// ValueKind tags the variant carried by a RawValue. Raw answers arrive
// from the collection subsystem as heterogeneous payloads; the tagged
// variant makes each normalization branch explicit and checkable.
type ValueKind string

const (
	// KindNumber carries a numeric rating answer.
	KindNumber ValueKind = "number"

	// KindBool carries a yes/no answer.
	KindBool ValueKind = "bool"

	// KindOption carries the selected option ID of a multiple_choice item.
	KindOption ValueKind = "option"

	// KindText carries a free-text answer.
	KindText ValueKind = "text"
)

// RawValue is the tagged union of the answer payloads the engine accepts.
// Exactly one field is meaningful, selected by Kind.
type RawValue struct {
	Kind   ValueKind `json:"kind"`
	Number float64   `json:"number,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
	Option string    `json:"option,omitempty"`
	Text   string    `json:"text,omitempty"`
}

// NumberValue builds a rating answer payload.
func NumberValue(v float64) RawValue { return RawValue{Kind: KindNumber, Number: v} }

// BoolValue builds a yes/no answer payload.
func BoolValue(v bool) RawValue { return RawValue{Kind: KindBool, Bool: v} }

// OptionValue builds a multiple-choice answer payload referencing an
// option ID of the answered item.
func OptionValue(optionID string) RawValue { return RawValue{Kind: KindOption, Option: optionID} }

// TextValue builds a free-text answer payload.
func TextValue(s string) RawValue { return RawValue{Kind: KindText, Text: s} }

// String returns a compact representation for logs and error messages.
func (v RawValue) String() string {
	switch v.Kind {
	case KindNumber:
		return fmt.Sprintf("number(%g)", v.Number)
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.Bool)
	case KindOption:
		return fmt.Sprintf("option(%s)", v.Option)
	case KindText:
		return "text(...)"
	default:
		return fmt.Sprintf("unknown(%s)", string(v.Kind))
	}
}

// Response is one submitted answer. Responses are immutable once
// submitted; the engine treats the response set for a run as a frozen
// snapshot and never writes back to it.
type Response struct {
	SubjectID    string   `json:"subject_id"`
	RespondentID string   `json:"respondent_id"`
	TraitID      string   `json:"trait_id"`
	ItemID       string   `json:"item_id"`
	Value        RawValue `json:"value"`
}
