package engine

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orbita-hq/feedback-engine/internal/domain"
)

// Snapshot is a self-contained YAML description of one survey run's
// inputs: the survey and its trait weights, trait/item definitions,
// subject panels, and the frozen response set. Snapshots power the CLI
// and integration tests; production deployments read the same shapes
// from the collaborator subsystems instead.
type Snapshot struct {
	Survey struct {
		ID           string              `yaml:"id" validate:"required"`
		Name         string              `yaml:"name"`
		TraitWeights []domain.Assignment `yaml:"trait_weights" validate:"required,min=1,dive"`
	} `yaml:"survey" validate:"required"`

	Traits []SnapshotTrait `yaml:"traits" validate:"required,min=1,dive"`

	Subjects []SnapshotSubject `yaml:"subjects" validate:"required,min=1,dive"`

	Responses []SnapshotResponse `yaml:"responses" validate:"dive"`
}

// SnapshotTrait is a trait definition with its items.
type SnapshotTrait struct {
	ID    string         `yaml:"id" validate:"required"`
	Name  string         `yaml:"name"`
	Items []SnapshotItem `yaml:"items" validate:"required,min=1,dive"`
}

// SnapshotItem is one item definition.
type SnapshotItem struct {
	ID      string                `yaml:"id" validate:"required"`
	Prompt  string                `yaml:"prompt"`
	Type    domain.ResponseType   `yaml:"type" validate:"required,oneof=rating boolean multiple_choice text"`
	Scale   *domain.ScaleBounds   `yaml:"scale,omitempty"`
	Options []domain.ChoiceOption `yaml:"options,omitempty" validate:"dive"`
}

// SnapshotSubject is one subject with their respondent panel.
type SnapshotSubject struct {
	ID    string `yaml:"id" validate:"required"`
	Panel []struct {
		RespondentID  string `yaml:"respondent_id" validate:"required"`
		Category      string `yaml:"category" validate:"required"`
		WeightPercent int    `yaml:"weight_percent"`
	} `yaml:"panel" validate:"required,min=1,dive"`
}

// SnapshotResponse is one raw answer. Exactly one of the value fields
// should be set, matching the item's type.
type SnapshotResponse struct {
	SubjectID    string   `yaml:"subject_id" validate:"required"`
	RespondentID string   `yaml:"respondent_id" validate:"required"`
	ItemID       string   `yaml:"item_id" validate:"required"`
	Number       *float64 `yaml:"number,omitempty"`
	Bool         *bool    `yaml:"bool,omitempty"`
	Option       *string  `yaml:"option,omitempty"`
	Text         *string  `yaml:"text,omitempty"`
}

// LoadSnapshot parses and validates a YAML snapshot.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if err := validate.Struct(&snap); err != nil {
		return nil, fmt.Errorf("snapshot validation: %w", err)
	}
	return &snap, nil
}

// LoadSnapshotFile is a convenience wrapper over LoadSnapshot for a path.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	return LoadSnapshot(f)
}

// DomainSurvey materializes the snapshot's survey definition. Snapshot
// surveys are closed: their response set is frozen by construction.
func (s *Snapshot) DomainSurvey() domain.Survey {
	return domain.Survey{
		ID:           s.Survey.ID,
		Name:         s.Survey.Name,
		Status:       domain.SurveyClosed,
		TraitWeights: s.Survey.TraitWeights,
	}
}

// SubjectIDs returns the snapshot's subject identifiers in file order.
func (s *Snapshot) SubjectIDs() []string {
	ids := make([]string, len(s.Subjects))
	for i, sub := range s.Subjects {
		ids[i] = sub.ID
	}
	return ids
}

// DomainTraits materializes the trait definitions as domain values,
// stamping each item with its owning trait.
func (s *Snapshot) DomainTraits() []domain.Trait {
	traits := make([]domain.Trait, 0, len(s.Traits))
	for _, t := range s.Traits {
		trait := domain.Trait{ID: t.ID, Name: t.Name}
		for _, it := range t.Items {
			trait.Items = append(trait.Items, domain.Item{
				ID:      it.ID,
				TraitID: t.ID,
				Prompt:  it.Prompt,
				Type:    it.Type,
				Scale:   it.Scale,
				Options: it.Options,
			})
		}
		traits = append(traits, trait)
	}
	return traits
}

// DomainPanel returns the panel of one subject as domain values, or nil
// when the subject is not in the snapshot.
func (s *Snapshot) DomainPanel(subjectID string) []domain.RespondentAssignment {
	for _, sub := range s.Subjects {
		if sub.ID != subjectID {
			continue
		}
		panel := make([]domain.RespondentAssignment, 0, len(sub.Panel))
		for _, p := range sub.Panel {
			panel = append(panel, domain.RespondentAssignment{
				RespondentID:  p.RespondentID,
				Category:      p.Category,
				WeightPercent: p.WeightPercent,
			})
		}
		return panel
	}
	return nil
}

// DomainResponses returns one subject's responses as domain values,
// resolving each raw payload to its tagged variant. The item's trait is
// resolved from the trait definitions.
func (s *Snapshot) DomainResponses(subjectID string) ([]domain.Response, error) {
	traitByItem := make(map[string]string)
	for _, t := range s.Traits {
		for _, it := range t.Items {
			traitByItem[it.ID] = t.ID
		}
	}

	var out []domain.Response
	for _, r := range s.Responses {
		if r.SubjectID != subjectID {
			continue
		}

		var value domain.RawValue
		switch {
		case r.Number != nil:
			value = domain.NumberValue(*r.Number)
		case r.Bool != nil:
			value = domain.BoolValue(*r.Bool)
		case r.Option != nil:
			value = domain.OptionValue(*r.Option)
		case r.Text != nil:
			value = domain.TextValue(*r.Text)
		default:
			return nil, fmt.Errorf("response %s/%s: no value set", r.RespondentID, r.ItemID)
		}

		out = append(out, domain.Response{
			SubjectID:    r.SubjectID,
			RespondentID: r.RespondentID,
			TraitID:      traitByItem[r.ItemID],
			ItemID:       r.ItemID,
			Value:        value,
		})
	}
	return out, nil
}
