package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStateTypedAccess verifies typed keys round-trip without runtime
// type assertions leaking to callers.
func TestStateTypedAccess(t *testing.T) {
	state := NewState()
	state = With(state, KeySurveyID, "sv1")
	state = With(state, KeyTraitWeights, []Assignment{{ID: "A", WeightPercent: 100}})

	surveyID, ok := Get(state, KeySurveyID)
	require.True(t, ok)
	assert.Equal(t, "sv1", surveyID)

	weights, ok := Get(state, KeyTraitWeights)
	require.True(t, ok)
	require.Len(t, weights, 1)
	assert.Equal(t, "A", weights[0].ID)

	_, ok = Get(state, KeySubjectID)
	assert.False(t, ok, "unset key must report absence")
}

// TestStateCopyOnWrite verifies With never mutates the original State.
func TestStateCopyOnWrite(t *testing.T) {
	original := With(NewState(), KeySubjectID, "before")

	updated := With(original, KeySubjectID, "after")

	fromOriginal, ok := Get(original, KeySubjectID)
	require.True(t, ok)
	assert.Equal(t, "before", fromOriginal)

	fromUpdated, ok := Get(updated, KeySubjectID)
	require.True(t, ok)
	assert.Equal(t, "after", fromUpdated)
	assert.Equal(t, 1, original.Len())
}

// TestStateZeroValue verifies a zero State accepts writes.
func TestStateZeroValue(t *testing.T) {
	var state State

	state = With(state, KeyRunID, "r1")

	runID, ok := Get(state, KeyRunID)
	require.True(t, ok)
	assert.Equal(t, "r1", runID)
}
