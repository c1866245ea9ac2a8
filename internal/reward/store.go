package reward

import (
	"context"
	"time"

	id "trustgate/pkg/domain"
)

// Store persists the verified check-in ledger and derived reward state.
type Store interface {
	// RecordVerified appends a verified check-in to the ledger. Idempotent
	// per (user, event): a second record for the same pair is a no-op.
	RecordVerified(ctx context.Context, userID id.UserID, eventID id.EventID, at time.Time) error

	// CountSince returns verified check-ins at or after the given time.
	CountSince(ctx context.Context, userID id.UserID, since time.Time) (int, error)

	// CountTotal returns the user's lifetime verified check-ins.
	CountTotal(ctx context.Context, userID id.UserID) (int, error)

	// GetState returns the persisted derived state, or sentinel.ErrNotFound.
	GetState(ctx context.Context, userID id.UserID) (*State, error)

	// SaveState upserts the derived state.
	SaveState(ctx context.Context, state *State) error
}
