package checkin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trustgate/internal/checkin"
	"trustgate/internal/device"
	devicestore "trustgate/internal/device/store"
	"trustgate/internal/geo"
	"trustgate/internal/reward"
	rewardstore "trustgate/internal/reward/store"
	"trustgate/internal/risk"
	"trustgate/internal/scanner"
	scannerstore "trustgate/internal/scanner/store"
	"trustgate/internal/token"
	"trustgate/internal/token/scanlog"
	tokenstore "trustgate/internal/token/store"
	"trustgate/internal/trust"
	truststore "trustgate/internal/trust/store"
	"trustgate/internal/verification"
	verificationstore "trustgate/internal/verification/store"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/audit"
	"trustgate/pkg/requestcontext"
)

var (
	venue = geo.Coordinates{Latitude: 52.5200, Longitude: 13.4050}

	// 0.0225 degrees of latitude is roughly 2.5 km, past the mismatch radius.
	nearbyMismatch = geo.Coordinates{Latitude: 52.5425, Longitude: 13.4050}

	// 0.9 degrees of latitude is roughly 100 km, past the spoof-jump radius.
	farVenue = geo.Coordinates{Latitude: 53.4200, Longitude: 13.4050}
)

type CheckinServiceSuite struct {
	suite.Suite

	svc       *checkin.Service
	directory *checkin.StaticDirectory
	tokens    *token.Service
	scanners  *scanner.Service
	devices   *device.Registry
	trust     *trust.Service
	rewards   *reward.Service
	auditLog  *audit.MemoryStore

	base    time.Time
	userID  id.UserID
	hostID  id.UserID
	eventID id.EventID
}

func TestCheckinServiceSuite(t *testing.T) {
	suite.Run(t, new(CheckinServiceSuite))
}

func (s *CheckinServiceSuite) SetupTest() {
	var err error

	s.base = time.Date(2026, 4, 18, 19, 0, 0, 0, time.UTC)
	s.userID = id.NewUserID()
	s.hostID = id.NewUserID()
	s.eventID = id.NewEventID()

	s.tokens, err = token.New(tokenstore.NewInMemory(), scanlog.NewInMemory(token.ReplayWindow), []byte("unit-test-signing-key"))
	s.Require().NoError(err)

	s.devices, err = device.NewRegistry(devicestore.NewInMemory())
	s.Require().NoError(err)

	s.trust, err = trust.New(truststore.NewInMemory())
	s.Require().NoError(err)

	verifications, err := verification.New(verificationstore.NewInMemory())
	s.Require().NoError(err)

	s.rewards, err = reward.New(rewardstore.NewInMemory())
	s.Require().NoError(err)

	s.scanners, err = scanner.New(scannerstore.NewInMemory())
	s.Require().NoError(err)

	s.auditLog = audit.NewMemoryStore()
	publisher, err := audit.NewPublisher(s.auditLog)
	s.Require().NoError(err)

	s.directory = checkin.NewStaticDirectory()
	s.directory.Add(&checkin.EventInfo{
		ID:        s.eventID,
		HostID:    s.hostID,
		StartTime: s.base.Add(15 * time.Minute),
		Venue:     venue,
	})

	s.svc, err = checkin.New(checkin.Dependencies{
		Directory:     s.directory,
		Tokens:        s.tokens,
		Devices:       s.devices,
		Trust:         s.trust,
		Verifications: verifications,
		Rewards:       s.rewards,
		Scanners:      s.scanners,
		Scorer:        risk.NewScorer(risk.DefaultConfig()),
		Audit:         publisher,
	})
	s.Require().NoError(err)
}

func (s *CheckinServiceSuite) ctx(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.base.Add(offset))
}

// warmDevice seeds a prior sighting so the fingerprint no longer counts as new.
func (s *CheckinServiceSuite) warmDevice(hash string, userID id.UserID) {
	_, err := s.devices.Record(requestcontext.WithTime(context.Background(), s.base.Add(-24*time.Hour)), hash, userID)
	s.Require().NoError(err)
}

func (s *CheckinServiceSuite) selfCheck(at geo.Coordinates, deviceHash string) checkin.Request {
	return checkin.Request{
		UserID:     s.userID,
		EventID:    s.eventID,
		Mode:       checkin.SelfCheck{Latitude: at.Latitude, Longitude: at.Longitude},
		DeviceHash: deviceHash,
	}
}

func (s *CheckinServiceSuite) auditActions() []audit.Action {
	events := s.auditLog.Events()
	actions := make([]audit.Action, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

func (s *CheckinServiceSuite) TestSelfCheckAtVenueIsValid() {
	s.warmDevice("dev-aaaa", s.userID)

	res, err := s.svc.Evaluate(s.ctx(0), s.selfCheck(venue, "dev-aaaa"))
	s.Require().NoError(err)

	s.Equal(risk.DecisionValid, res.Decision)
	s.InDelta(0.0, res.Score, 1e-9)
	s.Empty(res.Signals)
	s.InDelta(1.0, res.TrustScore, 1e-9)

	s.Require().NotNil(res.Reward)
	s.Equal(1, res.Reward.RollingCount)
	s.Equal(reward.TierBronze, res.Reward.Tier)

	s.Contains(s.auditActions(), audit.ActionDecisionRecorded)
}

func (s *CheckinServiceSuite) TestNewDeviceAloneStaysValid() {
	res, err := s.svc.Evaluate(s.ctx(0), s.selfCheck(venue, "dev-fresh"))
	s.Require().NoError(err)

	s.Equal(risk.DecisionValid, res.Decision)
	s.InDelta(0.25, res.Score, 1e-9)
	s.Equal([]risk.Signal{risk.SignalDeviceUntrusted}, res.Signals)
	s.NotNil(res.Reward)
}

func (s *CheckinServiceSuite) TestMismatchOnFreshDeviceEscalates() {
	res, err := s.svc.Evaluate(s.ctx(0), s.selfCheck(nearbyMismatch, "dev-fresh"))
	s.Require().NoError(err)

	s.Equal(risk.DecisionSuspicious, res.Decision)
	s.InDelta(0.60, res.Score, 1e-9)
	s.ElementsMatch([]risk.Signal{risk.SignalGPSMismatch, risk.SignalDeviceUntrusted}, res.Signals)
	s.Nil(res.Reward, "escalated check-ins must not count toward rewards")
	s.InDelta(0.95, res.TrustScore, 1e-9)
}

func (s *CheckinServiceSuite) TestResolutionRestoresTrustButNotRewards() {
	res, err := s.svc.Evaluate(s.ctx(0), s.selfCheck(nearbyMismatch, "dev-fresh"))
	s.Require().NoError(err)
	s.Require().Equal(risk.DecisionSuspicious, res.Decision)

	resolved, err := s.svc.Resolve(s.ctx(time.Hour), res.VerificationID, risk.ResolutionConfirmedValid, "support-agent-7", "host vouched in person")
	s.Require().NoError(err)

	s.Equal(res.VerificationID, resolved.VerificationID)
	s.InDelta(1.0, resolved.TrustScore, 1e-9)
	s.InDelta(0.05, resolved.TrustDelta, 1e-9)
	s.Contains(s.auditActions(), audit.ActionResolutionApplied)

	state, err := s.rewards.State(s.ctx(time.Hour), s.userID)
	s.Require().NoError(err)
	s.Equal(0, state.RollingCount, "a resolved check-in is not retroactively rewarded")

	_, err = s.svc.Resolve(s.ctx(2*time.Hour), res.VerificationID, risk.ResolutionConfirmedFraud, "support-agent-8", "")
	s.Require().Error(err, "a verification resolves exactly once")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *CheckinServiceSuite) TestHostQRHappyPath() {
	s.warmDevice("dev-aaaa", s.userID)

	reg, err := s.scanners.Register(s.ctx(0), s.eventID, s.hostID, "door-1")
	s.Require().NoError(err)

	issued, err := s.tokens.Issue(s.ctx(0), s.userID, s.eventID, 30, "")
	s.Require().NoError(err)

	res, err := s.svc.Evaluate(s.ctx(5*time.Minute), checkin.Request{
		UserID:  s.userID,
		EventID: s.eventID,
		Mode: checkin.HostQR{
			QRPayload:     issued.QRPayload,
			ScannerID:     reg.Scanner.ID,
			ScannerSecret: reg.Secret,
		},
		DeviceHash: "dev-aaaa",
	})
	s.Require().NoError(err)

	s.Equal(risk.DecisionValid, res.Decision)
	s.Empty(res.Signals)
	s.NotNil(res.Reward)
}

func (s *CheckinServiceSuite) TestHostQRReplayEscalates() {
	s.warmDevice("dev-aaaa", s.userID)

	reg, err := s.scanners.Register(s.ctx(0), s.eventID, s.hostID, "door-1")
	s.Require().NoError(err)
	issued, err := s.tokens.Issue(s.ctx(0), s.userID, s.eventID, 30, "")
	s.Require().NoError(err)

	req := checkin.Request{
		UserID:  s.userID,
		EventID: s.eventID,
		Mode: checkin.HostQR{
			QRPayload:     issued.QRPayload,
			ScannerID:     reg.Scanner.ID,
			ScannerSecret: reg.Secret,
		},
		DeviceHash: "dev-aaaa",
	}

	first, err := s.svc.Evaluate(s.ctx(time.Minute), req)
	s.Require().NoError(err)
	s.Require().Equal(risk.DecisionValid, first.Decision)

	second, err := s.svc.Evaluate(s.ctx(time.Minute+30*time.Second), req)
	s.Require().NoError(err)

	s.Equal(risk.DecisionSuspicious, second.Decision)
	s.Contains(second.Signals, risk.SignalQRReplay)
	s.Nil(second.Reward)
	s.Contains(s.auditActions(), audit.ActionReplayDetected)
}

func (s *CheckinServiceSuite) TestHostQRRejectsTokenForAnotherEvent() {
	reg, err := s.scanners.Register(s.ctx(0), s.eventID, s.hostID, "door-1")
	s.Require().NoError(err)

	otherEvent := id.NewEventID()
	issued, err := s.tokens.Issue(s.ctx(0), s.userID, otherEvent, 30, "")
	s.Require().NoError(err)

	_, err = s.svc.Evaluate(s.ctx(0), checkin.Request{
		UserID:  s.userID,
		EventID: s.eventID,
		Mode: checkin.HostQR{
			QRPayload:     issued.QRPayload,
			ScannerID:     reg.Scanner.ID,
			ScannerSecret: reg.Secret,
		},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	// The rejected presentation must not burn the token for its own event.
	status, _, err := s.tokens.Validate(s.ctx(time.Minute), issued.QRPayload, "")
	s.Require().NoError(err)
	s.Equal(token.StatusValid, status)
}

func (s *CheckinServiceSuite) TestHostQRRejectsExpiredToken() {
	reg, err := s.scanners.Register(s.ctx(0), s.eventID, s.hostID, "door-1")
	s.Require().NoError(err)
	issued, err := s.tokens.Issue(s.ctx(0), s.userID, s.eventID, 5, "")
	s.Require().NoError(err)

	_, err = s.svc.Evaluate(s.ctx(10*time.Minute), checkin.Request{
		UserID:  s.userID,
		EventID: s.eventID,
		Mode: checkin.HostQR{
			QRPayload:     issued.QRPayload,
			ScannerID:     reg.Scanner.ID,
			ScannerSecret: reg.Secret,
		},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *CheckinServiceSuite) TestHostQRRejectsBadScannerSecret() {
	reg, err := s.scanners.Register(s.ctx(0), s.eventID, s.hostID, "door-1")
	s.Require().NoError(err)
	issued, err := s.tokens.Issue(s.ctx(0), s.userID, s.eventID, 30, "")
	s.Require().NoError(err)

	_, err = s.svc.Evaluate(s.ctx(0), checkin.Request{
		UserID:  s.userID,
		EventID: s.eventID,
		Mode: checkin.HostQR{
			QRPayload:     issued.QRPayload,
			ScannerID:     reg.Scanner.ID,
			ScannerSecret: "not-the-secret",
		},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *CheckinServiceSuite) TestLocationJumpFlagsSpoof() {
	s.warmDevice("dev-aaaa", s.userID)

	first, err := s.svc.Evaluate(s.ctx(0), s.selfCheck(venue, "dev-aaaa"))
	s.Require().NoError(err)
	s.Require().Equal(risk.DecisionValid, first.Decision)

	farEvent := id.NewEventID()
	s.directory.Add(&checkin.EventInfo{
		ID:        farEvent,
		HostID:    s.hostID,
		StartTime: s.base.Add(45 * time.Minute),
		Venue:     farVenue,
	})

	second, err := s.svc.Evaluate(s.ctx(30*time.Minute), checkin.Request{
		UserID:     s.userID,
		EventID:    farEvent,
		Mode:       checkin.SelfCheck{Latitude: farVenue.Latitude, Longitude: farVenue.Longitude},
		DeviceHash: "dev-aaaa",
	})
	s.Require().NoError(err)

	s.Equal(risk.DecisionSuspicious, second.Decision)
	s.Contains(second.Signals, risk.SignalGPSSpoof)
	s.NotContains(second.Signals, risk.SignalGPSMismatch, "the presented position matches the second venue")
}

func (s *CheckinServiceSuite) TestLateArrivalCarriesTimingSignal() {
	s.warmDevice("dev-aaaa", s.userID)

	res, err := s.svc.Evaluate(s.ctx(15*time.Minute+3*time.Hour), s.selfCheck(venue, "dev-aaaa"))
	s.Require().NoError(err)

	s.Equal(risk.DecisionValid, res.Decision)
	s.Equal([]risk.Signal{risk.SignalTimingAnomaly}, res.Signals)
}

func (s *CheckinServiceSuite) TestUnconfirmedHostPolicySignal() {
	s.warmDevice("dev-aaaa", s.userID)

	gated := id.NewEventID()
	s.directory.Add(&checkin.EventInfo{
		ID:                      gated,
		HostID:                  s.hostID,
		StartTime:               s.base.Add(15 * time.Minute),
		Venue:                   venue,
		RequireHostConfirmation: true,
	})

	req := checkin.Request{
		UserID:     s.userID,
		EventID:    gated,
		Mode:       checkin.SelfCheck{Latitude: venue.Latitude, Longitude: venue.Longitude},
		DeviceHash: "dev-aaaa",
	}
	res, err := s.svc.Evaluate(s.ctx(0), req)
	s.Require().NoError(err)
	s.Equal([]risk.Signal{risk.SignalHostUnconfirmed}, res.Signals)

	confirmed := true
	req.HostConfirmed = &confirmed
	res, err = s.svc.Evaluate(s.ctx(time.Minute), req)
	s.Require().NoError(err)
	s.Empty(res.Signals)
}

func (s *CheckinServiceSuite) TestUnknownEvent() {
	_, err := s.svc.Evaluate(s.ctx(0), checkin.Request{
		UserID:  s.userID,
		EventID: id.NewEventID(),
		Mode:    checkin.SelfCheck{Latitude: venue.Latitude, Longitude: venue.Longitude},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CheckinServiceSuite) TestMissingModeRejected() {
	_, err := s.svc.Evaluate(s.ctx(0), checkin.Request{UserID: s.userID, EventID: s.eventID})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
