package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trustgate/internal/scanner"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// InMemory keeps scanners in a map for tests/dev.
type InMemory struct {
	mu       sync.RWMutex
	scanners map[id.ScannerID]*scanner.Scanner
}

func NewInMemory() *InMemory {
	return &InMemory{scanners: make(map[id.ScannerID]*scanner.Scanner)}
}

func (s *InMemory) Create(_ context.Context, sc *scanner.Scanner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.scanners[sc.ID]; exists {
		return fmt.Errorf("scanner %s: %w", sc.ID, sentinel.ErrConflict)
	}
	cp := *sc
	s.scanners[sc.ID] = &cp
	return nil
}

func (s *InMemory) Find(_ context.Context, scannerID id.ScannerID) (*scanner.Scanner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.scanners[scannerID]
	if !ok {
		return nil, fmt.Errorf("scanner not found: %w", sentinel.ErrNotFound)
	}
	cp := *sc
	return &cp, nil
}

func (s *InMemory) TouchUsed(_ context.Context, scannerID id.ScannerID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scanners[scannerID]
	if !ok {
		return fmt.Errorf("scanner not found: %w", sentinel.ErrNotFound)
	}
	sc.LastUsedAt = &at
	return nil
}
