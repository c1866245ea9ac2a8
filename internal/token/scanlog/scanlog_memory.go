package scanlog

import (
	"context"
	"sync"
	"time"

	"trustgate/pkg/requestcontext"
)

// InMemory keeps sightings in a map for tests/dev. Entries older than the
// window are dropped lazily on access. Time comes from the request context,
// so pinned-time tests exercise the window directly.
type InMemory struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
}

func NewInMemory(window time.Duration) *InMemory {
	return &InMemory{
		window: window,
		seen:   make(map[string]time.Time),
	}
}

func (l *InMemory) Touch(ctx context.Context, payloadHash string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := requestcontext.Now(ctx)
	last, ok := l.seen[payloadHash]
	l.seen[payloadHash] = now
	if ok && now.Sub(last) <= l.window {
		return true, nil
	}

	// Opportunistic cleanup so the map does not grow unbounded.
	cutoff := now.Add(-l.window)
	for k, ts := range l.seen {
		if ts.Before(cutoff) {
			delete(l.seen, k)
		}
	}
	return false, nil
}
