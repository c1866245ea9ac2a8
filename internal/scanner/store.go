package scanner

import (
	"context"
	"time"

	id "trustgate/pkg/domain"
)

// Store persists registered scanners.
type Store interface {
	Create(ctx context.Context, sc *Scanner) error
	Find(ctx context.Context, scannerID id.ScannerID) (*Scanner, error)
	TouchUsed(ctx context.Context, scannerID id.ScannerID, at time.Time) error
}
