package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trustgate/internal/noshow"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// InMemory keeps predictions in a slice per (user, event) pair for tests/dev.
type InMemory struct {
	mu          sync.Mutex
	predictions map[id.PredictionID]*noshow.Prediction
	order       []id.PredictionID
}

func NewInMemory() *InMemory {
	return &InMemory{predictions: make(map[id.PredictionID]*noshow.Prediction)}
}

func (s *InMemory) Append(_ context.Context, p *noshow.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.predictions[p.ID]; exists {
		return fmt.Errorf("prediction %s: %w", p.ID, sentinel.ErrConflict)
	}
	cp := *p
	s.predictions[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *InMemory) LatestByUserEvent(_ context.Context, userID id.UserID, eventID id.EventID) (*noshow.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		p := s.predictions[s.order[i]]
		if p.UserID == userID && p.EventID == eventID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("prediction not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) RecordOutcome(_ context.Context, predictionID id.PredictionID, outcome noshow.Outcome, at time.Time, override bool) (*noshow.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.predictions[predictionID]
	if !ok {
		return nil, fmt.Errorf("prediction not found: %w", sentinel.ErrNotFound)
	}
	if p.Outcome != nil && !override {
		return nil, fmt.Errorf("outcome already recorded: %w", sentinel.ErrConflict)
	}
	p.Outcome = &outcome
	p.OutcomeRecordedAt = &at
	cp := *p
	return &cp, nil
}
