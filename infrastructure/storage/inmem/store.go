// Package inmem provides in-memory implementations of the engine's
// store ports. They back the CLI's snapshot mode and the integration
// tests; production deployments substitute adapters over the real
// collaborator subsystems.
package inmem

import (
	"context"
	"sync"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var (
	_ ports.ResponseStore = (*Store)(nil)
	_ ports.SurveyStore   = (*Store)(nil)
	_ ports.PanelStore    = (*Store)(nil)
)

type pairKey struct{ surveyID, subjectID string }

// Store holds one survey's definition data, panels, and responses in
// memory. All data is supplied up front; reads are concurrency-safe.
type Store struct {
	mu           sync.RWMutex
	traitWeights map[string][]domain.Assignment
	traits       map[string][]domain.Trait
	panels       map[pairKey][]domain.RespondentAssignment
	responses    map[pairKey][]domain.Response
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		traitWeights: make(map[string][]domain.Assignment),
		traits:       make(map[string][]domain.Trait),
		panels:       make(map[pairKey][]domain.RespondentAssignment),
		responses:    make(map[pairKey][]domain.Response),
	}
}

// PutSurvey registers a survey's trait weights and trait definitions.
func (s *Store) PutSurvey(surveyID string, weights []domain.Assignment, traits []domain.Trait) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traitWeights[surveyID] = weights
	s.traits[surveyID] = traits
}

// PutPanel registers a subject's respondent panel for a survey.
func (s *Store) PutPanel(surveyID, subjectID string, panel []domain.RespondentAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panels[pairKey{surveyID, subjectID}] = panel
}

// PutResponses registers a subject's frozen response set for a survey.
func (s *Store) PutResponses(surveyID, subjectID string, responses []domain.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[pairKey{surveyID, subjectID}] = responses
}

// GetTraitWeights implements ports.SurveyStore.
func (s *Store) GetTraitWeights(ctx context.Context, surveyID string) ([]domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	weights, ok := s.traitWeights[surveyID]
	if !ok {
		return nil, ports.ErrSurveyNotFound
	}
	return weights, nil
}

// GetTraits implements ports.SurveyStore.
func (s *Store) GetTraits(ctx context.Context, surveyID string) ([]domain.Trait, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	traits, ok := s.traits[surveyID]
	if !ok {
		return nil, ports.ErrSurveyNotFound
	}
	return traits, nil
}

// GetPanel implements ports.PanelStore. A subject without a registered
// panel yields an empty panel, not an error; weight validation rejects
// it downstream.
func (s *Store) GetPanel(ctx context.Context, surveyID, subjectID string) ([]domain.RespondentAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panels[pairKey{surveyID, subjectID}], nil
}

// GetResponses implements ports.ResponseStore. No responses is a valid
// state and yields an empty snapshot.
func (s *Store) GetResponses(ctx context.Context, surveyID, subjectID string) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responses[pairKey{surveyID, subjectID}], nil
}
