package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

// countingResponseStore wraps a store and tracks peak read concurrency.
type countingResponseStore struct {
	inner  ports.ResponseStore
	mu     sync.Mutex
	active int32
	peak   int32
}

func (c *countingResponseStore) GetResponses(ctx context.Context, surveyID, subjectID string) ([]domain.Response, error) {
	cur := atomic.AddInt32(&c.active, 1)
	c.mu.Lock()
	if cur > c.peak {
		c.peak = cur
	}
	c.mu.Unlock()
	defer atomic.AddInt32(&c.active, -1)
	return c.inner.GetResponses(ctx, surveyID, subjectID)
}

// TestBatchRunnerRunsAllSubjects verifies every subject gets an
// outcome in input order, with failures isolated per subject.
func TestBatchRunnerRunsAllSubjects(t *testing.T) {
	f := newTestFixture(fullPanel, true)

	// Second subject: panel present but no responses → NoData.
	// Third subject: no panel registered → validation failure.
	f.store.PutPanel(testSurveyID, "s2", []domain.RespondentAssignment{
		{RespondentID: "r9", Category: "peer", WeightPercent: 100},
	})

	orc := newTestOrchestrator(t, f)
	outcomes, err := NewBatchRunner(orc).RunAll(context.Background(), testSurveyID, []string{testSubjectID, "s2", "s3"})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, testSubjectID, outcomes[0].SubjectID)
	require.NoError(t, outcomes[0].Err)
	require.NotNil(t, outcomes[0].Result.Composite)

	require.NoError(t, outcomes[1].Err)
	assert.Equal(t, domain.CompletenessNoData, outcomes[1].Result.Completeness)

	require.Error(t, outcomes[2].Err)
	ae, ok := AsAggregationError(outcomes[2].Err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, ae.Kind)
}

// TestBatchRunnerConcurrencyCap verifies no more runs are in flight
// than the configured cap.
func TestBatchRunnerConcurrencyCap(t *testing.T) {
	f := newTestFixture(fullPanel, true)
	subjects := []string{testSubjectID}
	for _, id := range []string{"s2", "s3", "s4", "s5"} {
		f.store.PutPanel(testSurveyID, id, []domain.RespondentAssignment{
			{RespondentID: "rx", Category: "peer", WeightPercent: 100},
		})
		subjects = append(subjects, id)
	}

	counting := &countingResponseStore{inner: f.store}
	stores := f.stores()
	stores.Responses = counting

	cfg := DefaultConfig()
	cfg.BatchConcurrency = 2

	orc, err := NewOrchestrator(cfg, stores, zerolog.Nop(), nil, nil)
	require.NoError(t, err)

	_, err = NewBatchRunner(orc).RunAll(context.Background(), testSurveyID, subjects)
	require.NoError(t, err)

	counting.mu.Lock()
	peak := counting.peak
	counting.mu.Unlock()
	assert.LessOrEqual(t, peak, int32(2))
}

// TestBatchRunnerCancellation verifies batch-level cancellation stops
// further runs.
func TestBatchRunnerCancellation(t *testing.T) {
	f := newTestFixture(fullPanel, true)
	orc := newTestOrchestrator(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, _ := NewBatchRunner(orc).RunAll(ctx, testSurveyID, []string{testSubjectID})
	require.Len(t, outcomes, 1)
	if outcomes[0].Err != nil {
		ae, ok := AsAggregationError(outcomes[0].Err)
		require.True(t, ok)
		assert.Equal(t, KindCancelled, ae.Kind)
	}
}
