package checkin

import (
	"trustgate/internal/reward"
	"trustgate/internal/risk"
	id "trustgate/pkg/domain"
)

// Mode is the tagged check-in variant. Mode-specific required fields are
// carried by the variant itself, so a self-check without coordinates or a
// host scan without a payload cannot be constructed.
type Mode interface {
	riskMode() risk.Mode
}

// SelfCheck is an attendee checking in from their own device with GPS.
type SelfCheck struct {
	Latitude  float64
	Longitude float64
}

func (SelfCheck) riskMode() risk.Mode { return risk.ModeSelfCheck }

// HostQR is a host scanner consuming the attendee's QR payload. Coordinates
// are optional; scanners are often stationary and unlocated.
type HostQR struct {
	QRPayload     string
	ScannerID     id.ScannerID
	ScannerSecret string
	Latitude      *float64
	Longitude     *float64
}

func (HostQR) riskMode() risk.Mode { return risk.ModeHostQR }

// Request is one check-in attempt.
type Request struct {
	UserID  id.UserID
	EventID id.EventID
	Mode    Mode

	// DeviceHash is the fingerprint of the presenting device, when known.
	DeviceHash string

	// HostConfirmed is the host's live confirmation, consulted only when the
	// event policy requires it.
	HostConfirmed *bool
}

// Result is the caller-facing outcome.
type Result struct {
	VerificationID id.VerificationID
	Decision       risk.Decision
	Score          float64
	Signals        []risk.Signal
	TrustScore     float64

	// Reward is set only when the decision was Valid.
	Reward *reward.State
}

// ResolutionResult reports the trust effect of a support adjudication.
type ResolutionResult struct {
	VerificationID id.VerificationID
	Outcome        risk.Resolution
	TrustScore     float64
	TrustDelta     float64
}
