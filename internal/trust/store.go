package trust

import (
	"context"

	id "trustgate/pkg/domain"
)

// Store persists trust profiles. The mutation surface is a single Execute
// method: implementations load or seed the profile, run the caller's update
// under a per-user exclusive hold, and persist the result, so concurrent
// adjustments to one user serialize instead of losing deltas.
type Store interface {
	// Get returns the stored profile, or sentinel.ErrNotFound when the user
	// has no history yet.
	Get(ctx context.Context, userID id.UserID) (*Profile, error)

	// Execute atomically applies fn to the user's profile, seeding the default
	// profile when none exists. The updated profile is returned.
	Execute(ctx context.Context, userID id.UserID, fn func(*Profile) error) (*Profile, error)
}
