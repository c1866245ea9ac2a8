package scanlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trustgate/pkg/requestcontext"
)

type MemoryScanLogSuite struct {
	suite.Suite
	log *InMemory
	now time.Time
}

func (s *MemoryScanLogSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 18, 45, 0, 0, time.UTC)
	s.log = NewInMemory(60 * time.Second)
}

func TestMemoryScanLogSuite(t *testing.T) {
	suite.Run(t, new(MemoryScanLogSuite))
}

func (s *MemoryScanLogSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *MemoryScanLogSuite) TestTouch() {
	s.Run("first sighting is not seen", func() {
		seen, err := s.log.Touch(s.ctx(), "hash-a")
		s.Require().NoError(err)
		s.False(seen)
	})

	s.Run("second sighting inside window is seen", func() {
		s.now = s.now.Add(30 * time.Second)
		seen, err := s.log.Touch(s.ctx(), "hash-a")
		s.Require().NoError(err)
		s.True(seen)
	})

	s.Run("sighting after window is fresh again", func() {
		s.now = s.now.Add(61 * time.Second)
		seen, err := s.log.Touch(s.ctx(), "hash-a")
		s.Require().NoError(err)
		s.False(seen)
	})

	s.Run("distinct hashes do not collide", func() {
		seen, err := s.log.Touch(s.ctx(), "hash-b")
		s.Require().NoError(err)
		s.False(seen)
	})
}

func (s *MemoryScanLogSuite) TestStaleEntriesDropped() {
	_, err := s.log.Touch(s.ctx(), "hash-old")
	s.Require().NoError(err)

	s.now = s.now.Add(5 * time.Minute)
	_, err = s.log.Touch(s.ctx(), "hash-new")
	s.Require().NoError(err)

	s.log.mu.Lock()
	_, kept := s.log.seen["hash-old"]
	s.log.mu.Unlock()
	s.False(kept)
}
