package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "trustgate/pkg/domain"
)

type recordingSink struct {
	mu        sync.Mutex
	published []Event
}

func (s *recordingSink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, event)
	return nil
}

func (s *recordingSink) Close() {}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

type PublisherSuite struct {
	suite.Suite
	store *MemoryStore
	sink  *recordingSink
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.sink = &recordingSink{}
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestEmit() {
	pub, err := NewPublisher(s.store, WithSink(s.sink))
	s.Require().NoError(err)
	ctx := context.Background()

	s.Run("persists and forwards with derived category", func() {
		err := pub.Emit(ctx, Event{
			Action: ActionDecisionRecorded,
			UserID: id.NewUserID(),
		})
		s.Require().NoError(err)

		events := s.store.Events()
		s.Require().Len(events, 1)
		s.Equal(CategoryCompliance, events[0].Category)
		s.False(events[0].Timestamp.IsZero())
		s.Equal(1, s.sink.count())
	})

	s.Run("rejects events without an action", func() {
		s.Error(pub.Emit(ctx, Event{UserID: id.NewUserID()}))
	})

	s.Run("unmapped actions default to operations", func() {
		s.Equal(CategoryOperations, CategoryFor(Action("something_else")))
	})
}

func (s *PublisherSuite) TestAsyncBuffer() {
	pub, err := NewPublisher(s.store, WithSink(s.sink), WithAsyncBuffer(8))
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pub.Run(ctx)
	}()

	err = pub.Emit(ctx, Event{Action: ActionReplayDetected, UserID: id.NewUserID()})
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return s.sink.count() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
