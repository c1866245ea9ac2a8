package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trustgate/internal/reward"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// InMemory keeps the ledger and state in maps for tests/dev.
type InMemory struct {
	mu     sync.Mutex
	ledger map[id.UserID]map[id.EventID]time.Time
	states map[id.UserID]*reward.State
}

func NewInMemory() *InMemory {
	return &InMemory{
		ledger: make(map[id.UserID]map[id.EventID]time.Time),
		states: make(map[id.UserID]*reward.State),
	}
}

func (s *InMemory) RecordVerified(_ context.Context, userID id.UserID, eventID id.EventID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, ok := s.ledger[userID]
	if !ok {
		events = make(map[id.EventID]time.Time)
		s.ledger[userID] = events
	}
	if _, seen := events[eventID]; !seen {
		events[eventID] = at
	}
	return nil
}

func (s *InMemory) CountSince(_ context.Context, userID id.UserID, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, at := range s.ledger[userID] {
		if !at.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountTotal(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger[userID]), nil
}

func (s *InMemory) GetState(_ context.Context, userID id.UserID) (*reward.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, fmt.Errorf("reward state not found: %w", sentinel.ErrNotFound)
	}
	cp := *state
	return &cp, nil
}

func (s *InMemory) SaveState(_ context.Context, state *reward.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *state
	s.states[state.UserID] = &cp
	return nil
}
