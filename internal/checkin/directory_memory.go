package checkin

import (
	"context"
	"fmt"
	"sync"

	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// StaticDirectory is an in-memory event directory for tests/dev deployments
// where the event catalog is seeded at startup.
type StaticDirectory struct {
	mu     sync.RWMutex
	events map[id.EventID]*EventInfo
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{events: make(map[id.EventID]*EventInfo)}
}

func (d *StaticDirectory) Add(info *EventInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events[info.ID] = info
}

func (d *StaticDirectory) Lookup(_ context.Context, eventID id.EventID) (*EventInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info, ok := d.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event not found: %w", sentinel.ErrNotFound)
	}
	cp := *info
	return &cp, nil
}
