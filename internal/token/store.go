package token

import (
	"context"
	"time"

	id "trustgate/pkg/domain"
)

// Store persists scan tokens. Implementations must make Consume atomic per
// token: concurrent attempts yield exactly one success, all others observe
// sentinel.ErrAlreadyUsed.
//
// Error contract: methods return sentinel errors for factual states
// (ErrNotFound for unknown tokens, ErrAlreadyUsed for consumed tokens,
// ErrExpired past the validity window, ErrInvalidState for revoked tokens)
// and wrapped infrastructure errors for store faults.
type Store interface {
	Create(ctx context.Context, t *ScanToken) error
	Find(ctx context.Context, tokenID id.TokenID) (*ScanToken, error)

	// Consume marks the token consumed if it is live. The first caller wins;
	// the record is returned even on ErrAlreadyUsed to enable replay attribution.
	Consume(ctx context.Context, tokenID id.TokenID, scannerID string, now time.Time) (*ScanToken, error)

	// Revoke invalidates an unconsumed token.
	Revoke(ctx context.Context, tokenID id.TokenID, now time.Time) error

	// DeleteExpired removes tokens whose validity window plus the retention
	// period has passed. Returns the number removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}
