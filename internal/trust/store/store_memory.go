package store

import (
	"context"
	"fmt"
	"sync"

	"trustgate/internal/trust"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// InMemory keeps profiles in a map. A single mutex guards all profiles, which
// is enough to serialize Execute calls in tests/dev.
type InMemory struct {
	mu       sync.Mutex
	profiles map[id.UserID]*trust.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.UserID]*trust.Profile)}
}

func (s *InMemory) Get(_ context.Context, userID id.UserID) (*trust.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("trust profile not found: %w", sentinel.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *InMemory) Execute(_ context.Context, userID id.UserID, fn func(*trust.Profile) error) (*trust.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = trust.NewProfile(userID)
	}

	// Apply on a copy so a failed update leaves the stored profile untouched.
	next := *p
	if err := fn(&next); err != nil {
		return nil, err
	}
	s.profiles[userID] = &next

	cp := next
	return &cp, nil
}
