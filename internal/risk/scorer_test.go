package risk

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "trustgate/pkg/domain-errors"
)

type ScorerSuite struct {
	suite.Suite
	scorer *Scorer
}

func (s *ScorerSuite) SetupTest() {
	s.scorer = NewScorer(DefaultConfig())
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerSuite))
}

func ptr[T any](v T) *T { return &v }

// cleanEvidence is a self-check attempt with nothing wrong.
func cleanEvidence() Evidence {
	return Evidence{
		Mode:         ModeSelfCheck,
		DistanceKm:   ptr(0.5),
		WithinWindow: ptr(true),
		TrustScore:   ptr(1.0),
	}
}

func (s *ScorerSuite) TestCleanAttemptIsValid() {
	a, err := s.scorer.Evaluate(cleanEvidence())
	s.Require().NoError(err)
	s.Equal(DecisionValid, a.Decision)
	s.Zero(a.Score)
	s.Empty(a.Signals)
}

func (s *ScorerSuite) TestSignalWeights() {
	s.Run("gps mismatch beyond 2km contributes 0.35", func() {
		ev := cleanEvidence()
		ev.DistanceKm = ptr(2.5)
		a, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
		s.InDelta(0.35, a.Score, 1e-9)
		s.Contains(a.Signals, SignalGPSMismatch)
	})

	s.Run("exactly 2km does not fire gps mismatch", func() {
		ev := cleanEvidence()
		ev.DistanceKm = ptr(2.0)
		a, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
		s.NotContains(a.Signals, SignalGPSMismatch)
	})

	s.Run("gps mismatch fires irrespective of other signals", func() {
		ev := cleanEvidence()
		ev.DistanceKm = ptr(8.0)
		ev.ReplayDetected = true
		ev.SpoofSuspected = true
		a, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
		s.Contains(a.Signals, SignalGPSMismatch)
	})

	s.Run("untrusted device contributes 0.25", func() {
		ev := cleanEvidence()
		ev.DeviceTrusted = ptr(false)
		a, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
		s.InDelta(0.25, a.Score, 1e-9)
	})

	s.Run("timing anomaly contributes 0.15", func() {
		ev := cleanEvidence()
		ev.WithinWindow = ptr(false)
		a, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
		s.InDelta(0.15, a.Score, 1e-9)
	})

	s.Run("missing host confirmation contributes 0.20 when required", func() {
		ev := cleanEvidence()
		ev.HostConfirmationRequired = true
		a, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
		s.InDelta(0.20, a.Score, 1e-9)
		s.Contains(a.Signals, SignalHostUnconfirmed)
	})

	s.Run("host confirmation satisfies required policy", func() {
		ev := cleanEvidence()
		ev.HostConfirmationRequired = true
		ev.HostConfirmed = ptr(true)
		a, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
		s.NotContains(a.Signals, SignalHostUnconfirmed)
	})

	s.Run("low trust profile contributes 0.20", func() {
		ev := cleanEvidence()
		ev.TrustScore = ptr(0.3)
		a, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
		s.InDelta(0.20, a.Score, 1e-9)
		s.Contains(a.Signals, SignalLowTrust)
	})
}

func (s *ScorerSuite) TestScoreClamping() {
	ev := Evidence{
		Mode:                     ModeSelfCheck,
		DistanceKm:               ptr(50.0),
		WithinWindow:             ptr(false),
		ReplayDetected:           true,
		SpoofSuspected:           true,
		DeviceTrusted:            ptr(false),
		HostConfirmationRequired: true,
		TrustScore:               ptr(0.1),
	}
	a, err := s.scorer.Evaluate(ev)
	s.Require().NoError(err)
	s.Equal(1.0, a.Score)
	s.Equal(DecisionFraudulent, a.Decision)
	s.Len(a.Signals, 7)
}

func (s *ScorerSuite) TestDecisionBoundaries() {
	s.Equal(DecisionValid, s.scorer.Decide(0.30))
	s.Equal(DecisionSuspicious, s.scorer.Decide(0.30001))
	s.Equal(DecisionSuspicious, s.scorer.Decide(0.70))
	s.Equal(DecisionFraudulent, s.scorer.Decide(0.70001))
	s.Equal(DecisionValid, s.scorer.Decide(0.0))
	s.Equal(DecisionFraudulent, s.scorer.Decide(1.0))
}

func (s *ScorerSuite) TestIncompleteSignals() {
	s.Run("missing window check fails evaluation", func() {
		ev := cleanEvidence()
		ev.WithinWindow = nil
		_, err := s.scorer.Evaluate(ev)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeIncompleteSignal))
	})

	s.Run("missing trust score fails evaluation", func() {
		ev := cleanEvidence()
		ev.TrustScore = nil
		_, err := s.scorer.Evaluate(ev)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeIncompleteSignal))
	})

	s.Run("self-check without distance fails evaluation", func() {
		ev := cleanEvidence()
		ev.DistanceKm = nil
		_, err := s.scorer.Evaluate(ev)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeIncompleteSignal))
	})

	s.Run("host-qr without distance is tolerated", func() {
		ev := cleanEvidence()
		ev.Mode = ModeHostQR
		ev.DistanceKm = nil
		_, err := s.scorer.Evaluate(ev)
		s.Require().NoError(err)
	})
}

func (s *ScorerSuite) TestEndToEndSuspiciousScenario() {
	// 2.5 km from venue on a fresh untrusted device, inside the window:
	// 0.35 + 0.25 = 0.60 -> Suspicious, escalated.
	ev := cleanEvidence()
	ev.DistanceKm = ptr(2.5)
	ev.DeviceTrusted = ptr(false)

	a, err := s.scorer.Evaluate(ev)
	s.Require().NoError(err)
	s.InDelta(0.60, a.Score, 1e-9)
	s.Equal(DecisionSuspicious, a.Decision)
	s.True(a.Escalated())
	s.ElementsMatch([]Signal{SignalGPSMismatch, SignalDeviceUntrusted}, a.Signals)
}
