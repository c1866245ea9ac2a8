// Package risk computes a bounded fraud-risk score for one check-in attempt
// and derives the terminal decision. The scorer is pure domain logic: no I/O,
// no side effects, all evidence passed in by the caller.
package risk

import (
	dErrors "trustgate/pkg/domain-errors"
)

// Config carries the signal weights and decision thresholds. Values are fixed
// at construction; the scorer is not a trainable system.
type Config struct {
	WeightQRReplay        float64
	WeightGPSSpoof        float64
	WeightGPSMismatch     float64
	WeightDeviceUntrusted float64
	WeightTimingAnomaly   float64
	WeightHostUnconfirmed float64
	WeightLowTrust        float64

	// GPSMismatchKm is the venue distance beyond which the mismatch signal fires.
	GPSMismatchKm float64
	// TrustFloor is the trust score below which the low-trust signal fires.
	TrustFloor float64

	// ValidMax and SuspiciousMax are inclusive upper bounds for their bands.
	ValidMax      float64
	SuspiciousMax float64
}

// DefaultConfig returns the production weight table.
func DefaultConfig() Config {
	return Config{
		WeightQRReplay:        0.60,
		WeightGPSSpoof:        0.50,
		WeightGPSMismatch:     0.35,
		WeightDeviceUntrusted: 0.25,
		WeightTimingAnomaly:   0.15,
		WeightHostUnconfirmed: 0.20,
		WeightLowTrust:        0.20,
		GPSMismatchKm:         2.0,
		TrustFloor:            0.40,
		ValidMax:              0.30,
		SuspiciousMax:         0.70,
	}
}

// Scorer evaluates evidence into an assessment. Keep the rules centralized
// and testable.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Evaluate computes the additive risk score from the full signal set, clamps
// it to [0,1], and derives the decision exactly once. A mandatory signal that
// could not be computed fails the evaluation rather than defaulting to Valid.
func (s *Scorer) Evaluate(ev Evidence) (*Assessment, error) {
	if err := s.requireComplete(ev); err != nil {
		return nil, err
	}

	var (
		score   float64
		signals []Signal
	)
	add := func(sig Signal, w float64) {
		signals = append(signals, sig)
		score += w
	}

	if ev.ReplayDetected {
		add(SignalQRReplay, s.cfg.WeightQRReplay)
	}
	if ev.SpoofSuspected {
		add(SignalGPSSpoof, s.cfg.WeightGPSSpoof)
	}
	if ev.DistanceKm != nil && *ev.DistanceKm > s.cfg.GPSMismatchKm {
		add(SignalGPSMismatch, s.cfg.WeightGPSMismatch)
	}
	if ev.DeviceTrusted != nil && !*ev.DeviceTrusted {
		add(SignalDeviceUntrusted, s.cfg.WeightDeviceUntrusted)
	}
	if !*ev.WithinWindow {
		add(SignalTimingAnomaly, s.cfg.WeightTimingAnomaly)
	}
	if ev.HostConfirmationRequired && (ev.HostConfirmed == nil || !*ev.HostConfirmed) {
		add(SignalHostUnconfirmed, s.cfg.WeightHostUnconfirmed)
	}
	if *ev.TrustScore < s.cfg.TrustFloor {
		add(SignalLowTrust, s.cfg.WeightLowTrust)
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}

	return &Assessment{
		Score:    score,
		Decision: s.Decide(score),
		Signals:  signals,
	}, nil
}

// Decide maps a score to a decision band. Lower bounds are inclusive:
// 0.30 is Valid, 0.70 is Suspicious.
func (s *Scorer) Decide(score float64) Decision {
	switch {
	case score <= s.cfg.ValidMax:
		return DecisionValid
	case score <= s.cfg.SuspiciousMax:
		return DecisionSuspicious
	default:
		return DecisionFraudulent
	}
}

// requireComplete enforces that mandatory signals were computed. Callers may
// retry with degraded checks or force a Suspicious classification; the scorer
// itself never substitutes a default.
func (s *Scorer) requireComplete(ev Evidence) error {
	if ev.WithinWindow == nil {
		return dErrors.New(dErrors.CodeIncompleteSignal, "check-in window membership could not be evaluated")
	}
	if ev.TrustScore == nil {
		return dErrors.New(dErrors.CodeIncompleteSignal, "trust profile could not be loaded")
	}
	if ev.Mode == ModeSelfCheck && ev.DistanceKm == nil {
		return dErrors.New(dErrors.CodeIncompleteSignal, "venue distance could not be computed")
	}
	return nil
}
