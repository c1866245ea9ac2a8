package scanner_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trustgate/internal/scanner"
	"trustgate/internal/scanner/store"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/requestcontext"
)

type ScannerServiceSuite struct {
	suite.Suite
	svc *scanner.Service
	ctx context.Context
}

func (s *ScannerServiceSuite) SetupTest() {
	svc, err := scanner.New(store.NewInMemory())
	s.Require().NoError(err)
	s.svc = svc
	s.ctx = requestcontext.WithTime(context.Background(),
		time.Date(2026, 3, 14, 18, 45, 0, 0, time.UTC))
}

func TestScannerServiceSuite(t *testing.T) {
	suite.Run(t, new(ScannerServiceSuite))
}

func (s *ScannerServiceSuite) TestRegister() {
	eventID, hostID := id.NewEventID(), id.NewUserID()

	reg, err := s.svc.Register(s.ctx, eventID, hostID, "door-1")
	s.Require().NoError(err)
	s.NotEmpty(reg.Secret)
	s.NotEqual(reg.Secret, reg.Scanner.SecretHash)
	s.False(reg.Scanner.ID.IsNil())

	s.Run("missing identities rejected", func() {
		_, err := s.svc.Register(s.ctx, id.EventID{}, hostID, "door-2")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ScannerServiceSuite) TestAuthenticate() {
	eventID, hostID := id.NewEventID(), id.NewUserID()
	reg, err := s.svc.Register(s.ctx, eventID, hostID, "door-1")
	s.Require().NoError(err)

	s.Run("valid secret authenticates", func() {
		sc, err := s.svc.Authenticate(s.ctx, reg.Scanner.ID, eventID, reg.Secret)
		s.Require().NoError(err)
		s.Equal(reg.Scanner.ID, sc.ID)
	})

	s.Run("wrong secret is rejected", func() {
		_, err := s.svc.Authenticate(s.ctx, reg.Scanner.ID, eventID, "not-the-secret")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("wrong event is rejected", func() {
		_, err := s.svc.Authenticate(s.ctx, reg.Scanner.ID, id.NewEventID(), reg.Secret)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown scanner is rejected", func() {
		_, err := s.svc.Authenticate(s.ctx, id.NewScannerID(), eventID, reg.Secret)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
