package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/sentinel"
	"trustgate/pkg/requestcontext"
)

// Service records verified check-ins and recomputes reward state from counts.
// Only check-ins whose original decision was Valid reach this service; later
// support corrections never enter the ledger.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(st Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("reward store is required")
	}
	svc := &Service{store: st}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RecordVerified appends the check-in to the ledger and recomputes state.
func (s *Service) RecordVerified(ctx context.Context, userID id.UserID, eventID id.EventID) (*State, error) {
	if userID.IsNil() || eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user and event are required")
	}

	if err := s.store.RecordVerified(ctx, userID, eventID, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verified check-in")
	}
	return s.Recompute(ctx, userID)
}

// Recompute derives tier and badge from the ledger counts and persists the
// result. The stored badge is kept when it outranks the derived one.
func (s *Service) Recompute(ctx context.Context, userID id.UserID) (*State, error) {
	now := requestcontext.Now(ctx)

	rolling, err := s.store.CountSince(ctx, userID, now.Add(-RollingWindow))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count rolling check-ins")
	}
	lifetime, err := s.store.CountTotal(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count lifetime check-ins")
	}

	tier, discount, stacks := TierFor(rolling)
	state := &State{
		UserID:          userID,
		RollingCount:    rolling,
		LifetimeCount:   lifetime,
		Tier:            tier,
		DiscountPercent: discount,
		GoldStacks:      stacks,
		Badge:           BadgeFor(lifetime),
		UpdatedAt:       now,
	}

	prev, err := s.store.GetState(ctx, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reward state")
	}
	if prev != nil {
		state.Badge = MaxBadge(prev.Badge, state.Badge)
	}

	if err := s.store.SaveState(ctx, state); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save reward state")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "reward state recomputed",
			"user_id", userID,
			"rolling_count", rolling,
			"lifetime_count", lifetime,
			"tier", state.Tier,
			"badge", state.Badge,
		)
	}
	return state, nil
}

// State returns the current standing, recomputing when nothing is stored yet.
func (s *Service) State(ctx context.Context, userID id.UserID) (*State, error) {
	state, err := s.store.GetState(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.Recompute(ctx, userID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reward state")
	}
	return state, nil
}
