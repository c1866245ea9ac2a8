package store

import (
	"context"
	"sync"
	"time"

	id "trustgate/pkg/domain"
)

type edge struct {
	firstSeen time.Time
	lastSeen  time.Time
}

// InMemory keeps sighting edges in nested maps for tests/dev.
type InMemory struct {
	mu      sync.RWMutex
	devices map[string]map[id.UserID]*edge
}

func NewInMemory() *InMemory {
	return &InMemory{devices: make(map[string]map[id.UserID]*edge)}
}

func (s *InMemory) Upsert(_ context.Context, deviceHash string, userID id.UserID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, known := s.devices[deviceHash]
	if !known {
		users = make(map[id.UserID]*edge)
		s.devices[deviceHash] = users
	}
	if e, ok := users[userID]; ok {
		e.lastSeen = at
	} else {
		users[userID] = &edge{firstSeen: at, lastSeen: at}
	}
	return !known, nil
}

func (s *InMemory) CountUsers(_ context.Context, deviceHash string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices[deviceHash]), nil
}

func (s *InMemory) CountActiveDevices(_ context.Context, userID id.UserID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, users := range s.devices {
		if e, ok := users[userID]; ok && !e.lastSeen.Before(since) {
			count++
		}
	}
	return count, nil
}
