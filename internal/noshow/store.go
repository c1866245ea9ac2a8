package noshow

import (
	"context"
	"time"

	id "trustgate/pkg/domain"
)

// Store persists no-show predictions and their recorded outcomes.
type Store interface {
	Append(ctx context.Context, p *Prediction) error

	// LatestByUserEvent returns the most recent prediction for the pair, or
	// sentinel.ErrNotFound.
	LatestByUserEvent(ctx context.Context, userID id.UserID, eventID id.EventID) (*Prediction, error)

	// RecordOutcome writes the outcome once. A second write without override
	// fails with sentinel.ErrConflict.
	RecordOutcome(ctx context.Context, predictionID id.PredictionID, outcome Outcome, at time.Time, override bool) (*Prediction, error)
}
