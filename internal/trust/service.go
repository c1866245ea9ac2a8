package trust

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trustgate/internal/risk"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/sentinel"
	"trustgate/pkg/requestcontext"
)

// Score deltas applied per verification outcome and per support resolution.
const (
	DeltaValid          = 0.02
	DeltaSuspicious     = -0.05
	DeltaFraudulent     = -0.15
	DeltaConfirmedValid = 0.10
	DeltaConfirmedFraud = -0.25
)

// Service adjusts trust profiles. All writes flow through the store's Execute
// so concurrent check-ins for one user cannot lose deltas.
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
		return nil, fmt.Errorf("trust store is required")
	}
	svc := &Service{store: st}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Profile returns the user's trust profile, or the default profile when the
// user has no history. The default is not persisted by a read.
func (s *Service) Profile(ctx context.Context, userID id.UserID) (*Profile, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return NewProfile(userID), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trust profile")
	}
	return p, nil
}

// ApplyDecision drifts the profile by the delta for the verification decision.
func (s *Service) ApplyDecision(ctx context.Context, userID id.UserID, decision risk.Decision) (*Profile, error) {
	var delta float64
	switch decision {
	case risk.DecisionValid:
		delta = DeltaValid
	case risk.DecisionSuspicious:
		delta = DeltaSuspicious
	case risk.DecisionFraudulent:
		delta = DeltaFraudulent
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown decision %q", decision))
	}

	now := requestcontext.Now(ctx)
	p, err := s.store.Execute(ctx, userID, func(p *Profile) error {
		p.Score = clamp(p.Score + delta)
		p.UpdatedAt = now
		switch decision {
		case risk.DecisionValid:
			p.ValidCount++
		case risk.DecisionSuspicious:
			p.SuspiciousCount++
			p.LastPenaltyAt = &now
		case risk.DecisionFraudulent:
			p.FraudulentCount++
			p.LastPenaltyAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to adjust trust profile")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "trust profile adjusted",
			"user_id", userID,
			"decision", decision,
			"delta", delta,
			"score", p.Score,
		)
	}
	return p, nil
}

// ApplyResolution drifts the profile by the delta for a support adjudication.
// Inconclusive resolutions leave the score untouched.
func (s *Service) ApplyResolution(ctx context.Context, userID id.UserID, resolution risk.Resolution) (*Profile, error) {
	var delta float64
	switch resolution {
	case risk.ResolutionConfirmedValid:
		delta = DeltaConfirmedValid
	case risk.ResolutionConfirmedFraud:
		delta = DeltaConfirmedFraud
	case risk.ResolutionInconclusive:
		return s.Profile(ctx, userID)
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown resolution %q", resolution))
	}

	now := requestcontext.Now(ctx)
	p, err := s.store.Execute(ctx, userID, func(p *Profile) error {
		p.Score = clamp(p.Score + delta)
		p.UpdatedAt = now
		if resolution == risk.ResolutionConfirmedFraud {
			p.LastPenaltyAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to adjust trust profile")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "trust profile resolved",
			"user_id", userID,
			"resolution", resolution,
			"delta", delta,
			"score", p.Score,
		)
	}
	return p, nil
}
