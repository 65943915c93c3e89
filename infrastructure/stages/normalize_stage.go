package stages

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.Stage = (*NormalizeStage)(nil)

// NormalizeConfig controls normalization behavior. Configuration is
// immutable after stage creation.
type NormalizeConfig struct {
	// DefaultScaleMin and DefaultScaleMax bound rating items that
	// declare no scale of their own. They default to the 1-5 scale.
	DefaultScaleMin float64 `yaml:"default_scale_min" json:"default_scale_min"`
	DefaultScaleMax float64 `yaml:"default_scale_max" json:"default_scale_max" validate:"gtfield=DefaultScaleMin"`

	// FailOnUnattributed escalates responses from respondents missing
	// from the panel to run failures instead of exclusion-with-warning.
	FailOnUnattributed bool `yaml:"fail_on_unattributed" json:"fail_on_unattributed"`
}

// DefaultNormalizeConfig returns the stock configuration: 1-5 default
// scale, unattributed responses excluded with a warning.
func DefaultNormalizeConfig() NormalizeConfig {
	return NormalizeConfig{
		DefaultScaleMin: domain.DefaultScale.Min,
		DefaultScaleMax: domain.DefaultScale.Max,
	}
}

// NormalizeStage converts the frozen response snapshot into normalized
// 0-100 scores annotated with each respondent's canonical category.
// Text answers are excluded from the output; out-of-range values are
// clamped and flagged rather than discarded. Responses from respondents
// absent from the panel cannot be attributed to a category and are
// excluded with a warning (or fail the run, per configuration).
type NormalizeStage struct {
	config  NormalizeConfig
	log     zerolog.Logger
	metrics ports.MetricsCollector
}

// NewNormalizeStage creates the normalization stage with a validated
// configuration. metrics may be nil.
func NewNormalizeStage(config NormalizeConfig, log zerolog.Logger, metrics ports.MetricsCollector) (*NormalizeStage, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("normalize configuration: %w", err)
	}
	return &NormalizeStage{config: config, log: log, metrics: metrics}, nil
}

// Name returns the stage identifier.
func (s *NormalizeStage) Name() string { return StageNormalize }

// Validate implements ports.Stage.
func (s *NormalizeStage) Validate() error {
	return validate.Struct(s.config)
}

// Execute normalizes every response in the snapshot and writes the
// scored set under KeyScored. Normalization is total over well-typed
// input: the only errors out of this stage are invariant violations
// caused by upstream contract breaches (unknown items, mismatched value
// kinds), which fail the run.
func (s *NormalizeStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	responses, ok := domain.Get(state, domain.KeyResponses)
	if !ok {
		return state, missing("responses")
	}
	traits, ok := domain.Get(state, domain.KeyTraits)
	if !ok {
		return state, missing("traits")
	}
	panel, ok := domain.Get(state, domain.KeyPanel)
	if !ok {
		return state, missing("panel")
	}

	defaultScale := domain.ScaleBounds{Min: s.config.DefaultScaleMin, Max: s.config.DefaultScaleMax}
	items := make(map[string]domain.Item)
	for _, t := range traits {
		for _, it := range t.Items {
			if it.Type == domain.TypeRating && it.Scale == nil {
				it.Scale = &defaultScale
			}
			items[it.ID] = it
		}
	}
	categories := make(map[string]string, len(panel))
	for _, ra := range panel {
		categories[ra.RespondentID] = domain.CanonicalCategory(ra.Category)
	}

	scored := make([]domain.ScoredResponse, 0, len(responses))
	for _, r := range responses {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		item, ok := items[r.ItemID]
		if !ok {
			return state, &domain.InvariantError{
				SubjectID:    r.SubjectID,
				RespondentID: r.RespondentID,
				ItemID:       r.ItemID,
				Err:          domain.ErrUnknownItem,
			}
		}

		category, ok := categories[r.RespondentID]
		if !ok {
			if s.config.FailOnUnattributed {
				return state, &domain.InvariantError{
					SubjectID:    r.SubjectID,
					RespondentID: r.RespondentID,
					ItemID:       r.ItemID,
					Err:          domain.ErrUnknownRespondent,
				}
			}
			s.log.Warn().
				Str("respondent_id", r.RespondentID).
				Str("item_id", r.ItemID).
				Msg("response from respondent not on panel, excluded")
			s.count("responses_unattributed", r)
			continue
		}

		ns, err := domain.Normalize(r, item)
		if err != nil {
			return state, err
		}
		if ns.Excluded {
			continue
		}
		if ns.Clamped {
			s.log.Warn().
				Str("respondent_id", r.RespondentID).
				Str("item_id", r.ItemID).
				Msg("raw value outside declared bounds, clamped")
			s.count("responses_clamped", r)
		}

		scored = append(scored, domain.ScoredResponse{
			RespondentID: r.RespondentID,
			Category:     category,
			TraitID:      item.TraitID,
			ItemID:       r.ItemID,
			Score:        ns.Value,
			Clamped:      ns.Clamped,
		})
	}

	return domain.With(state, domain.KeyScored, scored), nil
}

func (s *NormalizeStage) count(metric string, r domain.Response) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCounter(metric, 1, map[string]string{"subject_id": r.SubjectID})
}
