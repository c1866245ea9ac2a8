package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trustgate/internal/token"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// InMemory stores scan tokens in memory for tests/dev. All mutations happen
// under the store mutex, so consumption is atomic per token.
type InMemory struct {
	mu     sync.RWMutex
	tokens map[id.TokenID]*token.ScanToken
}

func NewInMemory() *InMemory {
	return &InMemory{tokens: make(map[id.TokenID]*token.ScanToken)}
}

func (s *InMemory) Create(_ context.Context, t *token.ScanToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[t.ID]; exists {
		return fmt.Errorf("token %s: %w", t.ID, sentinel.ErrConflict)
	}
	cp := *t
	s.tokens[t.ID] = &cp
	return nil
}

func (s *InMemory) Find(_ context.Context, tokenID id.TokenID) (*token.ScanToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[tokenID]
	if !ok {
		return nil, fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (s *InMemory) Consume(_ context.Context, tokenID id.TokenID, scannerID string, now time.Time) (*token.ScanToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenID]
	if !ok {
		return nil, fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
	}
	if t.Consumed {
		cp := *t
		return &cp, fmt.Errorf("token already consumed: %w", sentinel.ErrAlreadyUsed)
	}
	if t.Revoked {
		cp := *t
		return &cp, fmt.Errorf("token revoked: %w", sentinel.ErrInvalidState)
	}
	if t.Expired(now) {
		cp := *t
		return &cp, fmt.Errorf("token expired: %w", sentinel.ErrExpired)
	}

	t.Consumed = true
	t.ConsumedAt = &now
	t.ScannerID = scannerID
	cp := *t
	return &cp, nil
}

func (s *InMemory) Revoke(_ context.Context, tokenID id.TokenID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenID]
	if !ok {
		return fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
	}
	if t.Consumed {
		return fmt.Errorf("token already consumed: %w", sentinel.ErrAlreadyUsed)
	}
	t.Revoked = true
	t.RevokedAt = &now
	return nil
}

func (s *InMemory) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, t := range s.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(s.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}
