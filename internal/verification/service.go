package verification

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

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service guards the audit log invariants: appended decisions are immutable,
// resolutions attach once, and only escalated decisions accept a resolution.
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
		return nil, fmt.Errorf("verification store is required")
	}
	svc := &Service{store: st}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Append writes a new decision record. The ID and timestamp are assigned here
// when the caller left them zero.
func (s *Service) Append(ctx context.Context, rec *Record) (*Record, error) {
	if rec.UserID.IsNil() || rec.EventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user and event are required")
	}
	if rec.ID.IsNil() {
		rec.ID = id.NewVerificationID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = requestcontext.Now(ctx)
	}

	if err := s.store.Append(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append verification record")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "verification recorded",
			"verification_id", rec.ID,
			"user_id", rec.UserID,
			"event_id", rec.EventID,
			"decision", rec.Decision,
			"score", rec.Score,
		)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, recID id.VerificationID) (*Record, error) {
	rec, err := s.store.Get(ctx, recID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification record")
	}
	return rec, nil
}

// Resolve attaches a support adjudication. Valid decisions are final and
// cannot be resolved; escalated records accept exactly one resolution.
func (s *Service) Resolve(ctx context.Context, recID id.VerificationID, outcome risk.Resolution, resolvedBy, note string) (*Record, error) {
	if !outcome.Known() {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown resolution %q", outcome))
	}
	if resolvedBy == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "resolver identity is required")
	}

	rec, err := s.Get(ctx, recID)
	if err != nil {
		return nil, err
	}
	if rec.Decision == risk.DecisionValid {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "only escalated decisions accept a resolution")
	}

	resolved, err := s.store.AttachResolution(ctx, recID, ResolutionRecord{
		Outcome:    outcome,
		ResolvedBy: resolvedBy,
		Note:       note,
		ResolvedAt: requestcontext.Now(ctx),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "verification already resolved")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve verification")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "verification resolved",
			"verification_id", recID,
			"outcome", outcome,
			"resolved_by", resolvedBy,
		)
	}
	return resolved, nil
}

func (s *Service) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*Record, error) {
	recs, err := s.store.ListByUser(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	return recs, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID id.EventID, limit int) ([]*Record, error) {
	recs, err := s.store.ListByEvent(ctx, eventID, clampLimit(limit))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verifications")
	}
	return recs, nil
}

// LastLocated returns the user's most recent record with coordinates. The
// boolean is false when the user has no located history.
func (s *Service) LastLocated(ctx context.Context, userID id.UserID) (*Record, bool, error) {
	rec, err := s.store.LastLocatedByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load last located verification")
	}
	return rec, true, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
