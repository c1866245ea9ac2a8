package verification

import (
	"context"

	id "trustgate/pkg/domain"
)

// Store is the audit log persistence contract. Append is insert-only;
// AttachResolution is the single permitted mutation and must be atomic:
// concurrent attempts yield exactly one success, the rest observe
// sentinel.ErrConflict. Unknown records surface sentinel.ErrNotFound.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	Get(ctx context.Context, recID id.VerificationID) (*Record, error)

	AttachResolution(ctx context.Context, recID id.VerificationID, res ResolutionRecord) (*Record, error)

	// ListByUser returns the user's records, most recent first.
	ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*Record, error)

	// ListByEvent returns the event's records, most recent first.
	ListByEvent(ctx context.Context, eventID id.EventID, limit int) ([]*Record, error)

	// LastLocatedByUser returns the user's most recent record that carries
	// coordinates, or sentinel.ErrNotFound.
	LastLocatedByUser(ctx context.Context, userID id.UserID) (*Record, error)
}
