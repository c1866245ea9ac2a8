package scanner

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

// Service registers scanners and authenticates their secrets.
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
		return nil, fmt.Errorf("scanner store is required")
	}
	svc := &Service{store: st}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates a scanner for the event host. The plaintext secret is
// returned exactly once and never persisted.
func (s *Service) Register(ctx context.Context, eventID id.EventID, hostID id.UserID, label string) (*Registered, error) {
	if eventID.IsNil() || hostID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "event and host are required")
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate scanner secret")
	}
	hash, err := HashSecret(secret)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash scanner secret")
	}

	sc := &Scanner{
		ID:         id.NewScannerID(),
		EventID:    eventID,
		HostID:     hostID,
		Label:      label,
		SecretHash: hash,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, sc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register scanner")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "scanner registered",
			"scanner_id", sc.ID,
			"event_id", eventID,
			"host_id", hostID,
		)
	}
	return &Registered{Scanner: sc, Secret: secret}, nil
}

// Authenticate verifies the scanner secret and returns the scanner when the
// secret matches and the scanner belongs to the given event.
func (s *Service) Authenticate(ctx context.Context, scannerID id.ScannerID, eventID id.EventID, secret string) (*Scanner, error) {
	sc, err := s.store.Find(ctx, scannerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown scanner")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scanner")
	}
	if sc.EventID != eventID {
		return nil, dErrors.New(dErrors.CodeForbidden, "scanner is not registered for this event")
	}
	if err := VerifySecret(secret, sc.SecretHash); err != nil {
		return nil, err
	}

	if err := s.store.TouchUsed(ctx, scannerID, requestcontext.Now(ctx)); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to record scanner use", "scanner_id", scannerID, "error", err)
	}
	return sc, nil
}
