package inmem

import (
	"context"
	"sync"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.ResultStore = (*ResultStore)(nil)

// ResultStore is an append-only in-memory result store. Every Save
// appends; records are never overwritten, matching the engine's
// supersede-by-timestamp history model.
type ResultStore struct {
	mu      sync.RWMutex
	results map[pairKey][]*domain.AggregationResult
}

// NewResultStore creates an empty result store.
func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[pairKey][]*domain.AggregationResult)}
}

// Save implements ports.ResultStore.
func (s *ResultStore) Save(ctx context.Context, result *domain.AggregationResult) error {
	cp := *result
	key := pairKey{result.SurveyID, result.SubjectID}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = append(s.results[key], &cp)
	return nil
}

// GetLatest implements ports.ResultStore, returning the record with the
// newest ComputedAt for the pair.
func (s *ResultStore) GetLatest(ctx context.Context, surveyID, subjectID string) (*domain.AggregationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.results[pairKey{surveyID, subjectID}]
	if len(records) == 0 {
		return nil, ports.ErrResultNotFound
	}

	latest := records[0]
	for _, r := range records[1:] {
		if r.ComputedAt.After(latest.ComputedAt) {
			latest = r
		}
	}
	cp := *latest
	return &cp, nil
}

// History returns all records for the pair in insertion order. Used by
// tests to assert the append-only contract.
func (s *ResultStore) History(surveyID, subjectID string) []*domain.AggregationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.results[pairKey{surveyID, subjectID}]
	out := make([]*domain.AggregationResult, len(records))
	copy(out, records)
	return out
}
