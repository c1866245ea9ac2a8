package noshow

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

// Service runs the forecaster and keeps the prediction audit trail that lets
// the weights be validated against real outcomes later.
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
		return nil, fmt.Errorf("prediction store is required")
	}
	svc := &Service{store: st}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Predict scores the booking context and logs the prediction with its full
// feature snapshot and model version.
func (s *Service) Predict(ctx context.Context, userID id.UserID, eventID id.EventID, in Input) (*Prediction, error) {
	if userID.IsNil() || eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user and event are required")
	}
	if in.EventStart.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "event start time is required")
	}

	features := BuildFeatures(in)
	p := &Prediction{
		ID:           id.NewPredictionID(),
		UserID:       userID,
		EventID:      eventID,
		Probability:  features.Probability(),
		Confidence:   features.Confidence(),
		Features:     features,
		ModelVersion: ModelVersion,
		CreatedAt:    requestcontext.Now(ctx),
	}

	if err := s.store.Append(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log prediction")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "no-show prediction logged",
			"prediction_id", p.ID,
			"user_id", userID,
			"event_id", eventID,
			"probability", p.Probability,
			"confidence", p.Confidence,
		)
	}
	return p, nil
}

// RecordOutcome attaches the real outcome to the latest prediction for the
// pair. The write is once-only; corrections must pass override explicitly.
func (s *Service) RecordOutcome(ctx context.Context, userID id.UserID, eventID id.EventID, outcome Outcome, override bool) (*Prediction, error) {
	if !outcome.Known() {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown outcome %q", outcome))
	}

	latest, err := s.store.LatestByUserEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no prediction for this user and event")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load prediction")
	}

	updated, err := s.store.RecordOutcome(ctx, latest.ID, outcome, requestcontext.Now(ctx), override)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "outcome already recorded")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record outcome")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "prediction outcome recorded",
			"prediction_id", updated.ID,
			"outcome", outcome,
			"override", override,
		)
	}
	return updated, nil
}
