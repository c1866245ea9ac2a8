// Package checkin orchestrates attendance verification: it gathers evidence
// from the geo, token, device, and trust modules, scores it, records the
// decision, and fans out the side effects.
package checkin

import (
	"context"
	"time"

	"trustgate/internal/geo"
	id "trustgate/pkg/domain"
)

// EventInfo is what the collaborating event catalog knows about an event.
type EventInfo struct {
	ID                      id.EventID
	HostID                  id.UserID
	StartTime               time.Time
	Venue                   geo.Coordinates
	RequireHostConfirmation bool
}

// EventDirectory resolves event metadata. Implementations return
// sentinel.ErrNotFound for unknown events.
type EventDirectory interface {
	Lookup(ctx context.Context, eventID id.EventID) (*EventInfo, error)
}
