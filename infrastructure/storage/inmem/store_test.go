package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

// TestStoreSurveyLookups verifies survey definition reads and the
// not-found behavior for unregistered surveys.
func TestStoreSurveyLookups(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	weights := []domain.Assignment{{ID: "leadership", WeightPercent: 100}}
	traits := []domain.Trait{{ID: "leadership", Name: "Leadership"}}
	store.PutSurvey("s-1", weights, traits)

	gotWeights, err := store.GetTraitWeights(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, weights, gotWeights)

	gotTraits, err := store.GetTraits(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, traits, gotTraits)

	_, err = store.GetTraitWeights(ctx, "unknown")
	assert.ErrorIs(t, err, ports.ErrSurveyNotFound)

	_, err = store.GetTraits(ctx, "unknown")
	assert.ErrorIs(t, err, ports.ErrSurveyNotFound)
}

// TestStoreSubjectLookups verifies panel and response reads return
// empty sets, not errors, for unregistered subjects.
func TestStoreSubjectLookups(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	panel := []domain.RespondentAssignment{{RespondentID: "r-1", Category: "peer", WeightPercent: 100}}
	responses := []domain.Response{{SubjectID: "u-1", RespondentID: "r-1", TraitID: "leadership", ItemID: "i-1", Value: domain.NumberValue(4)}}
	store.PutPanel("s-1", "u-1", panel)
	store.PutResponses("s-1", "u-1", responses)

	gotPanel, err := store.GetPanel(ctx, "s-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, panel, gotPanel)

	gotResponses, err := store.GetResponses(ctx, "s-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, responses, gotResponses)

	gotPanel, err = store.GetPanel(ctx, "s-1", "u-2")
	require.NoError(t, err)
	assert.Empty(t, gotPanel)

	gotResponses, err = store.GetResponses(ctx, "s-1", "u-2")
	require.NoError(t, err)
	assert.Empty(t, gotResponses)
}

// TestResultStoreAppendOnly verifies saves never overwrite and GetLatest
// selects by ComputedAt rather than insertion order.
func TestResultStoreAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	score := func(v float64) *float64 { return &v }

	first := &domain.AggregationResult{
		ID: "run-1", SurveyID: "s-1", SubjectID: "u-1",
		Composite: score(81.5), Completeness: domain.CompletenessPartial,
		ComputedAt: base,
	}
	// Saved second but computed earlier; GetLatest must skip it.
	older := &domain.AggregationResult{
		ID: "run-0", SurveyID: "s-1", SubjectID: "u-1",
		Composite: score(70), Completeness: domain.CompletenessFull,
		ComputedAt: base.Add(-time.Hour),
	}

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, older))

	latest, err := store.GetLatest(ctx, "s-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", latest.ID)
	require.NotNil(t, latest.Composite)
	assert.Equal(t, 81.5, *latest.Composite)

	history := store.History("s-1", "u-1")
	require.Len(t, history, 2)
	assert.Equal(t, "run-1", history[0].ID)
	assert.Equal(t, "run-0", history[1].ID)
}

// TestResultStoreNotFound verifies the sentinel for pairs with no runs.
func TestResultStoreNotFound(t *testing.T) {
	store := NewResultStore()

	_, err := store.GetLatest(context.Background(), "s-1", "u-1")
	assert.ErrorIs(t, err, ports.ErrResultNotFound)
}

// TestResultStoreSaveCopies verifies stored records are insulated from
// later mutation of the caller's struct.
func TestResultStoreSaveCopies(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	result := &domain.AggregationResult{
		ID: "run-1", SurveyID: "s-1", SubjectID: "u-1",
		Completeness: domain.CompletenessNoData,
		ComputedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, result))

	result.ID = "mutated"

	latest, err := store.GetLatest(ctx, "s-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", latest.ID)
}
