package token

import (
	"time"

	id "trustgate/pkg/domain"
)

// ScanToken is a short-lived, single-use credential proving a check-in
// attempt is fresh. A token transitions unconsumed -> consumed exactly once;
// consumed tokens are retained for the replay window and audit queries.
type ScanToken struct {
	ID          id.TokenID
	UserID      id.UserID
	EventID     id.EventID
	DeviceHash  string // optional device binding; empty means unbound
	PayloadHash string // SHA-256 of the signed QR payload
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Consumed    bool
	ConsumedAt  *time.Time
	ScannerID   string
	Revoked     bool
	RevokedAt   *time.Time
}

// Expired reports whether the token validity window has passed.
func (t *ScanToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Issued is the issuance result handed back to the caller: the record plus
// the signed QR payload the client renders.
type Issued struct {
	Token     *ScanToken
	QRPayload string
	ExpiresAt time.Time
}

// ValidateStatus is the read-only classification of a token.
type ValidateStatus string

const (
	StatusValid          ValidateStatus = "valid"
	StatusExpired        ValidateStatus = "expired"
	StatusAlreadyUsed    ValidateStatus = "already_used"
	StatusUnknown        ValidateStatus = "unknown"
	StatusDeviceMismatch ValidateStatus = "device_mismatch"
	StatusRevoked        ValidateStatus = "revoked"
)

// ConsumeStatus is the outcome of a consumption attempt. Expected business
// outcomes are variants here, not errors; errors are reserved for true faults
// (store unavailable, bad payload).
type ConsumeStatus string

const (
	ConsumeOK             ConsumeStatus = "consumed"
	ConsumeAlreadyUsed    ConsumeStatus = "already_used"
	ConsumeExpired        ConsumeStatus = "expired"
	ConsumeUnknown        ConsumeStatus = "unknown"
	ConsumeDeviceMismatch ConsumeStatus = "device_mismatch"
	ConsumeRevoked        ConsumeStatus = "revoked"
	ConsumeReplayed       ConsumeStatus = "replayed"
)

// ConsumeResult carries the outcome and, when the token record exists, the
// record itself (returned even on replay so callers can attribute the attempt).
type ConsumeResult struct {
	Status ConsumeStatus
	Token  *ScanToken
}

// Fresh reports whether the attempt was the one successful consumption.
func (r *ConsumeResult) Fresh() bool { return r.Status == ConsumeOK }

// Replay reports whether the attempt reused a payload or an already-consumed token.
func (r *ConsumeResult) Replay() bool {
	return r.Status == ConsumeAlreadyUsed || r.Status == ConsumeReplayed
}
