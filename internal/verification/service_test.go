package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trustgate/internal/risk"
	"trustgate/internal/verification"
	"trustgate/internal/verification/store"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/requestcontext"
)

type VerificationServiceSuite struct {
	suite.Suite
	svc *verification.Service
	ctx context.Context
	now time.Time
}

func (s *VerificationServiceSuite) SetupTest() {
	svc, err := verification.New(store.NewInMemory())
	s.Require().NoError(err)
	s.svc = svc
	s.now = time.Date(2026, 3, 14, 18, 45, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) appendRecord(decision risk.Decision) *verification.Record {
	rec, err := s.svc.Append(s.ctx, &verification.Record{
		UserID:   id.NewUserID(),
		EventID:  id.NewEventID(),
		Mode:     risk.ModeSelfCheck,
		Decision: decision,
		Score:    0.42,
		Signals:  []risk.Signal{risk.SignalGPSMismatch},
	})
	s.Require().NoError(err)
	return rec
}

func (s *VerificationServiceSuite) TestAppend() {
	s.Run("assigns id and timestamp", func() {
		rec := s.appendRecord(risk.DecisionSuspicious)
		s.False(rec.ID.IsNil())
		s.Equal(s.now, rec.CreatedAt)

		got, err := s.svc.Get(s.ctx, rec.ID)
		s.Require().NoError(err)
		s.Equal(rec.Decision, got.Decision)
		s.False(got.Resolved())
	})

	s.Run("rejects missing identities", func() {
		_, err := s.svc.Append(s.ctx, &verification.Record{Decision: risk.DecisionValid})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *VerificationServiceSuite) TestResolve() {
	s.Run("resolves a suspicious record once", func() {
		rec := s.appendRecord(risk.DecisionSuspicious)

		resolved, err := s.svc.Resolve(s.ctx, rec.ID, risk.ResolutionConfirmedValid, "agent-7", "host vouched for attendee")
		s.Require().NoError(err)
		s.Require().True(resolved.Resolved())
		s.Equal(risk.ResolutionConfirmedValid, resolved.Resolution.Outcome)
		s.Equal("agent-7", resolved.Resolution.ResolvedBy)

		_, err = s.svc.Resolve(s.ctx, rec.ID, risk.ResolutionConfirmedFraud, "agent-8", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		// First resolution survives the rejected second attempt.
		got, err := s.svc.Get(s.ctx, rec.ID)
		s.Require().NoError(err)
		s.Equal(risk.ResolutionConfirmedValid, got.Resolution.Outcome)
	})

	s.Run("fraudulent records accept resolution", func() {
		rec := s.appendRecord(risk.DecisionFraudulent)
		resolved, err := s.svc.Resolve(s.ctx, rec.ID, risk.ResolutionConfirmedFraud, "agent-7", "")
		s.Require().NoError(err)
		s.True(resolved.Resolved())
	})

	s.Run("valid decisions cannot be resolved", func() {
		rec := s.appendRecord(risk.DecisionValid)
		_, err := s.svc.Resolve(s.ctx, rec.ID, risk.ResolutionConfirmedFraud, "agent-7", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("unknown record", func() {
		_, err := s.svc.Resolve(s.ctx, id.NewVerificationID(), risk.ResolutionInconclusive, "agent-7", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown outcome is rejected", func() {
		rec := s.appendRecord(risk.DecisionSuspicious)
		_, err := s.svc.Resolve(s.ctx, rec.ID, risk.Resolution("maybe"), "agent-7", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *VerificationServiceSuite) TestQueries() {
	userID := id.NewUserID()
	eventID := id.NewEventID()

	lat, lon := 40.7128, -74.0060
	for i := 0; i < 3; i++ {
		s.ctx = requestcontext.WithTime(context.Background(), s.now.Add(time.Duration(i)*time.Minute))
		rec := &verification.Record{
			UserID:   userID,
			EventID:  eventID,
			Mode:     risk.ModeSelfCheck,
			Decision: risk.DecisionValid,
		}
		if i == 1 {
			rec.Latitude, rec.Longitude = &lat, &lon
		}
		_, err := s.svc.Append(s.ctx, rec)
		s.Require().NoError(err)
	}

	s.Run("list by user newest first", func() {
		recs, err := s.svc.ListByUser(s.ctx, userID, 0)
		s.Require().NoError(err)
		s.Require().Len(recs, 3)
		s.True(recs[0].CreatedAt.After(recs[2].CreatedAt))
	})

	s.Run("list by event honors limit", func() {
		recs, err := s.svc.ListByEvent(s.ctx, eventID, 2)
		s.Require().NoError(err)
		s.Len(recs, 2)
	})

	s.Run("last located skips records without coordinates", func() {
		rec, ok, err := s.svc.LastLocated(s.ctx, userID)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Require().NotNil(rec.Latitude)
		s.InDelta(lat, *rec.Latitude, 1e-9)
	})

	s.Run("no located history", func() {
		_, ok, err := s.svc.LastLocated(s.ctx, id.NewUserID())
		s.Require().NoError(err)
		s.False(ok)
	})
}
