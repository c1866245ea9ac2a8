package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trustgate/internal/verification"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// InMemory keeps records in a map for tests/dev.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.VerificationID]*verification.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.VerificationID]*verification.Record)}
}

func (s *InMemory) Append(_ context.Context, rec *verification.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("verification %s: %w", rec.ID, sentinel.ErrConflict)
	}
	s.records[rec.ID] = copyRecord(rec)
	return nil
}

func (s *InMemory) Get(_ context.Context, recID id.VerificationID) (*verification.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recID]
	if !ok {
		return nil, fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
	}
	return copyRecord(rec), nil
}

func (s *InMemory) AttachResolution(_ context.Context, recID id.VerificationID, res verification.ResolutionRecord) (*verification.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recID]
	if !ok {
		return nil, fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
	}
	if rec.Resolution != nil {
		return nil, fmt.Errorf("verification already resolved: %w", sentinel.ErrConflict)
	}
	rec.Resolution = &res
	return copyRecord(rec), nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID, limit int) ([]*verification.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(rec *verification.Record) bool { return rec.UserID == userID }, limit), nil
}

func (s *InMemory) ListByEvent(_ context.Context, eventID id.EventID, limit int) ([]*verification.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(rec *verification.Record) bool { return rec.EventID == eventID }, limit), nil
}

func (s *InMemory) LastLocatedByUser(_ context.Context, userID id.UserID) (*verification.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	located := s.collect(func(rec *verification.Record) bool {
		return rec.UserID == userID && rec.Latitude != nil && rec.Longitude != nil
	}, 1)
	if len(located) == 0 {
		return nil, fmt.Errorf("no located verification: %w", sentinel.ErrNotFound)
	}
	return located[0], nil
}

// collect filters and sorts most recent first. Callers hold the lock.
func (s *InMemory) collect(match func(*verification.Record) bool, limit int) []*verification.Record {
	var out []*verification.Record
	for _, rec := range s.records {
		if match(rec) {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func copyRecord(rec *verification.Record) *verification.Record {
	cp := *rec
	cp.Signals = append(cp.Signals[:0:0], rec.Signals...)
	if rec.Resolution != nil {
		res := *rec.Resolution
		cp.Resolution = &res
	}
	return &cp
}
