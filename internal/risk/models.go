package risk

import id "trustgate/pkg/domain"

// Decision is the terminal classification of one verification attempt.
type Decision string

const (
	DecisionValid      Decision = "Valid"
	DecisionSuspicious Decision = "Suspicious"
	DecisionFraudulent Decision = "Fraudulent"
)

// Resolution is a support adjudication of an escalated verification.
type Resolution string

const (
	ResolutionConfirmedFraud Resolution = "confirmed_fraud"
	ResolutionConfirmedValid Resolution = "confirmed_valid"
	ResolutionInconclusive   Resolution = "inconclusive"
)

func (r Resolution) Known() bool {
	switch r {
	case ResolutionConfirmedFraud, ResolutionConfirmedValid, ResolutionInconclusive:
		return true
	}
	return false
}

// Signal names one fraud indicator that contributed to the risk score.
// These strings are persisted in the audit log, so they are part of the
// storage contract.
type Signal string

const (
	SignalQRReplay        Signal = "qr_replay_detected"
	SignalGPSSpoof        Signal = "gps_spoof_suspected"
	SignalGPSMismatch     Signal = "gps_mismatch"
	SignalDeviceUntrusted Signal = "device_untrusted"
	SignalTimingAnomaly   Signal = "timing_anomaly"
	SignalHostUnconfirmed Signal = "host_not_confirmed"
	SignalLowTrust        Signal = "low_trust_profile"
)

// Mode distinguishes the two check-in flows. Mode-specific required fields
// are enforced by the evidence types, not by optional-field inspection.
type Mode string

const (
	ModeSelfCheck Mode = "self_check"
	ModeHostQR    Mode = "host_qr"
)

// Evidence is the full signal surface for one attempt. Pointer fields are
// nil when the underlying signal could not be observed; the scorer decides
// whether that absence is tolerable or an incomplete-signal failure.
type Evidence struct {
	Mode Mode

	// DistanceKm is the great-circle distance from the venue. Mandatory for
	// self-check; nil in host-QR mode when no coordinates were presented.
	DistanceKm *float64

	// WithinWindow reports membership in the event check-in window. Mandatory.
	WithinWindow *bool

	// ReplayDetected is set when the scan payload was seen inside the replay
	// window or the token had already been consumed.
	ReplayDetected bool

	// SpoofSuspected is set by the location-jump heuristic.
	SpoofSuspected bool

	// DeviceTrusted is nil when no device fingerprint was presented.
	DeviceTrusted *bool

	// HostConfirmed is consulted only when the event policy requires host
	// confirmation.
	HostConfirmationRequired bool
	HostConfirmed            *bool

	// TrustScore is the user's current trust profile score. Mandatory; new
	// users default to 1.0 upstream.
	TrustScore *float64
}

// Assessment is the scorer output: the clamped score, the derived decision,
// and every signal that fired.
type Assessment struct {
	UserID   id.UserID
	EventID  id.EventID
	Score    float64
	Decision Decision
	Signals  []Signal
}

// Escalated reports whether the attempt requires human resolution.
func (a *Assessment) Escalated() bool {
	return a.Decision == DecisionSuspicious || a.Decision == DecisionFraudulent
}
