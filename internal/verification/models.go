// Package verification is the append-only audit log of check-in decisions.
// Decision fields never change after append; the only permitted mutation is
// attaching a support resolution, exactly once.
package verification

import (
	"time"

	"trustgate/internal/risk"
	id "trustgate/pkg/domain"
)

// Record is one adjudicated check-in attempt.
type Record struct {
	ID      id.VerificationID
	UserID  id.UserID
	EventID id.EventID
	Mode    risk.Mode

	Decision risk.Decision
	Score    float64
	Signals  []risk.Signal

	// Presented evidence, kept for audit and for the location-jump heuristic.
	DeviceHash string
	Latitude   *float64
	Longitude  *float64
	DistanceKm *float64

	CreatedAt  time.Time
	Resolution *ResolutionRecord
}

// Resolved reports whether support has adjudicated this record.
func (r *Record) Resolved() bool {
	return r.Resolution != nil
}

// ResolutionRecord is the write-once support adjudication block.
type ResolutionRecord struct {
	Outcome    risk.Resolution
	ResolvedBy string
	Note       string
	ResolvedAt time.Time
}
