// Package trust maintains per-user trust profiles. Scores live in [0,1],
// start at 1.0, and drift with verification outcomes and support resolutions.
package trust

import (
	"time"

	id "trustgate/pkg/domain"
)

// DefaultScore is the starting score for a user with no history.
const DefaultScore = 1.0

// Profile is the persistent trust state for one user.
type Profile struct {
	UserID          id.UserID
	Score           float64
	ValidCount      int
	SuspiciousCount int
	FraudulentCount int
	LastPenaltyAt   *time.Time
	UpdatedAt       time.Time
}

// NewProfile returns the default profile for a user with no history.
func NewProfile(userID id.UserID) *Profile {
	return &Profile{UserID: userID, Score: DefaultScore}
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
