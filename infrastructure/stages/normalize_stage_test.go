package stages

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbita-hq/feedback-engine/internal/domain"
)

func normalizeTestState(responses []domain.Response) domain.State {
	traits := []domain.Trait{
		{
			ID: "leadership",
			Items: []domain.Item{
				{ID: "i1", TraitID: "leadership", Type: domain.TypeRating},
				{ID: "i2", TraitID: "leadership", Type: domain.TypeBoolean},
				{ID: "i3", TraitID: "leadership", Type: domain.TypeText},
			},
		},
	}
	panel := []domain.RespondentAssignment{
		{RespondentID: "r1", Category: "Peer", WeightPercent: 60},
		{RespondentID: "r2", Category: "self", WeightPercent: 40},
	}

	state := domain.NewState()
	state = domain.With(state, domain.KeyTraits, traits)
	state = domain.With(state, domain.KeyPanel, panel)
	state = domain.With(state, domain.KeyResponses, responses)
	return state
}

func newTestNormalizeStage(t *testing.T, cfg NormalizeConfig) *NormalizeStage {
	t.Helper()
	stage, err := NewNormalizeStage(cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	return stage
}

// TestNormalizeStage verifies scoring, category annotation with
// canonical labels, and exclusion of text answers.
func TestNormalizeStage(t *testing.T) {
	stage := newTestNormalizeStage(t, DefaultNormalizeConfig())
	state := normalizeTestState([]domain.Response{
		{SubjectID: "s1", RespondentID: "r1", ItemID: "i1", Value: domain.NumberValue(4)},
		{SubjectID: "s1", RespondentID: "r2", ItemID: "i2", Value: domain.BoolValue(true)},
		{SubjectID: "s1", RespondentID: "r1", ItemID: "i3", Value: domain.TextValue("solid leader")},
	})

	out, err := stage.Execute(context.Background(), state)
	require.NoError(t, err)

	scored, ok := domain.Get(out, domain.KeyScored)
	require.True(t, ok)
	require.Len(t, scored, 2, "text answer must be excluded")

	assert.Equal(t, "peer", scored[0].Category, "panel label Peer must canonicalize")
	assert.InDelta(t, 75.0, scored[0].Score, 1e-9, "rating 4 on default 1-5 scale")
	assert.Equal(t, "leadership", scored[0].TraitID)

	assert.Equal(t, "self", scored[1].Category)
	assert.Equal(t, 100.0, scored[1].Score)
}

// TestNormalizeStageClampsAndFlags verifies out-of-range values are
// clamped, scored, and flagged.
func TestNormalizeStageClampsAndFlags(t *testing.T) {
	stage := newTestNormalizeStage(t, DefaultNormalizeConfig())
	state := normalizeTestState([]domain.Response{
		{SubjectID: "s1", RespondentID: "r1", ItemID: "i1", Value: domain.NumberValue(11)},
	})

	out, err := stage.Execute(context.Background(), state)
	require.NoError(t, err)

	scored, _ := domain.Get(out, domain.KeyScored)
	require.Len(t, scored, 1)
	assert.Equal(t, 100.0, scored[0].Score)
	assert.True(t, scored[0].Clamped)
}

// TestNormalizeStageDefaultScaleOverride verifies the configured
// default bounds apply to rating items without declared scales.
func TestNormalizeStageDefaultScaleOverride(t *testing.T) {
	stage := newTestNormalizeStage(t, NormalizeConfig{DefaultScaleMin: 0, DefaultScaleMax: 10})
	state := normalizeTestState([]domain.Response{
		{SubjectID: "s1", RespondentID: "r1", ItemID: "i1", Value: domain.NumberValue(7)},
	})

	out, err := stage.Execute(context.Background(), state)
	require.NoError(t, err)

	scored, _ := domain.Get(out, domain.KeyScored)
	require.Len(t, scored, 1)
	assert.InDelta(t, 70.0, scored[0].Score, 1e-9)
}

// TestNormalizeStageUnattributed verifies the two policies for
// responses from respondents missing from the panel.
func TestNormalizeStageUnattributed(t *testing.T) {
	responses := []domain.Response{
		{SubjectID: "s1", RespondentID: "ghost", ItemID: "i1", Value: domain.NumberValue(5)},
	}

	t.Run("default policy excludes with warning", func(t *testing.T) {
		stage := newTestNormalizeStage(t, DefaultNormalizeConfig())

		out, err := stage.Execute(context.Background(), normalizeTestState(responses))
		require.NoError(t, err)

		scored, _ := domain.Get(out, domain.KeyScored)
		assert.Empty(t, scored)
	})

	t.Run("strict policy fails the run", func(t *testing.T) {
		cfg := DefaultNormalizeConfig()
		cfg.FailOnUnattributed = true
		stage := newTestNormalizeStage(t, cfg)

		_, err := stage.Execute(context.Background(), normalizeTestState(responses))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnknownRespondent)
	})
}

// TestNormalizeStageUnknownItem verifies an unknown item reference is
// an invariant violation that fails the run.
func TestNormalizeStageUnknownItem(t *testing.T) {
	stage := newTestNormalizeStage(t, DefaultNormalizeConfig())
	state := normalizeTestState([]domain.Response{
		{SubjectID: "s1", RespondentID: "r1", ItemID: "nope", Value: domain.NumberValue(3)},
	})

	_, err := stage.Execute(context.Background(), state)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownItem)

	var inv *domain.InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "nope", inv.ItemID)
}

// TestNewNormalizeStageRejectsBadConfig verifies configuration
// validation at construction time.
func TestNewNormalizeStageRejectsBadConfig(t *testing.T) {
	_, err := NewNormalizeStage(NormalizeConfig{DefaultScaleMin: 5, DefaultScaleMax: 5}, zerolog.Nop(), nil)
	require.Error(t, err)
}
