package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"trustgate/internal/checkin/metrics"
	"trustgate/internal/device"
	"trustgate/internal/geo"
	"trustgate/internal/reward"
	"trustgate/internal/risk"
	"trustgate/internal/scanner"
	"trustgate/internal/token"
	"trustgate/internal/trust"
	"trustgate/internal/verification"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/audit"
	"trustgate/pkg/platform/sentinel"
	"trustgate/pkg/requestcontext"
)

const (
	// SpoofJumpKm and SpoofWindow parameterize the location-jump heuristic:
	// two located check-ins farther apart than physically plausible within
	// the window suggest a spoofed position.
	SpoofJumpKm = 50.0
	SpoofWindow = time.Hour
)

// Dependencies are the collaborators the pipeline is wired with. All fields
// are required.
type Dependencies struct {
	Directory     EventDirectory
	Tokens        *token.Service
	Devices       *device.Registry
	Trust         *trust.Service
	Verifications *verification.Service
	Rewards       *reward.Service
	Scanners      *scanner.Service
	Scorer        *risk.Scorer
	Audit         *audit.Publisher
}

// Service runs the verification pipeline.
type Service struct {
	deps    Dependencies
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(deps Dependencies, opts ...Option) (*Service, error) {
	switch {
	case deps.Directory == nil:
		return nil, fmt.Errorf("event directory is required")
	case deps.Tokens == nil:
		return nil, fmt.Errorf("token service is required")
	case deps.Devices == nil:
		return nil, fmt.Errorf("device registry is required")
	case deps.Trust == nil:
		return nil, fmt.Errorf("trust service is required")
	case deps.Verifications == nil:
		return nil, fmt.Errorf("verification service is required")
	case deps.Rewards == nil:
		return nil, fmt.Errorf("reward service is required")
	case deps.Scanners == nil:
		return nil, fmt.Errorf("scanner service is required")
	case deps.Scorer == nil:
		return nil, fmt.Errorf("risk scorer is required")
	case deps.Audit == nil:
		return nil, fmt.Errorf("audit publisher is required")
	}

	svc := &Service{
		deps:   deps,
		tracer: otel.Tracer("trustgate/checkin"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Evaluate runs one check-in attempt end to end: evidence gathering, scoring,
// audit append, trust drift, and reward recompute on a Valid decision.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "checkin.evaluate")
	defer span.End()

	if req.UserID.IsNil() || req.EventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user and event are required")
	}
	if req.Mode == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "check-in mode is required")
	}

	info, err := s.deps.Directory.Lookup(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up event")
	}

	now := requestcontext.Now(ctx)
	within := geo.InCheckInWindow(info.StartTime, now)
	ev := risk.Evidence{
		Mode:                     req.Mode.riskMode(),
		WithinWindow:             &within,
		HostConfirmationRequired: info.RequireHostConfirmation,
		HostConfirmed:            req.HostConfirmed,
	}

	var lat, lon *float64
	switch m := req.Mode.(type) {
	case SelfCheck:
		dist, err := geo.Distance(geo.Coordinates{Latitude: m.Latitude, Longitude: m.Longitude}, info.Venue)
		if err != nil {
			return nil, err
		}
		ev.DistanceKm = &dist
		lat, lon = &m.Latitude, &m.Longitude

	case HostQR:
		if err := s.consumeHostQR(ctx, &req, m, &ev); err != nil {
			return nil, err
		}
		if m.Latitude != nil && m.Longitude != nil {
			dist, err := geo.Distance(geo.Coordinates{Latitude: *m.Latitude, Longitude: *m.Longitude}, info.Venue)
			if err != nil {
				return nil, err
			}
			ev.DistanceKm = &dist
			lat, lon = m.Latitude, m.Longitude
		}

	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unsupported check-in mode")
	}

	if err := s.gatherSignals(ctx, &req, &ev, lat, lon, now); err != nil {
		return nil, err
	}

	assessment, err := s.deps.Scorer.Evaluate(ev)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeIncompleteSignal) {
			return nil, err
		}
		// A mandatory signal could not be evaluated: the attempt is never
		// allowed to pass as Valid, so it escalates for human review.
		assessment = &risk.Assessment{Score: 0.5, Decision: risk.DecisionSuspicious}
	}

	rec, err := s.deps.Verifications.Append(ctx, &verification.Record{
		UserID:     req.UserID,
		EventID:    req.EventID,
		Mode:       ev.Mode,
		Decision:   assessment.Decision,
		Score:      assessment.Score,
		Signals:    assessment.Signals,
		DeviceHash: req.DeviceHash,
		Latitude:   lat,
		Longitude:  lon,
		DistanceKm: ev.DistanceKm,
	})
	if err != nil {
		return nil, err
	}

	profile, err := s.deps.Trust.ApplyDecision(ctx, req.UserID, assessment.Decision)
	if err != nil {
		return nil, err
	}

	result := &Result{
		VerificationID: rec.ID,
		Decision:       assessment.Decision,
		Score:          assessment.Score,
		Signals:        assessment.Signals,
		TrustScore:     profile.Score,
	}
	if assessment.Decision == risk.DecisionValid {
		state, err := s.deps.Rewards.RecordVerified(ctx, req.UserID, req.EventID)
		if err != nil {
			return nil, err
		}
		result.Reward = state
	}

	s.emitDecision(ctx, req, rec, assessment, ev.ReplayDetected)
	s.metrics.ObserveDecision(string(ev.Mode), string(assessment.Decision), assessment.Score)
	span.SetAttributes(
		attribute.String("checkin.decision", string(assessment.Decision)),
		attribute.Float64("checkin.score", assessment.Score),
	)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "check-in adjudicated",
			"verification_id", rec.ID,
			"user_id", req.UserID,
			"event_id", req.EventID,
			"mode", ev.Mode,
			"decision", assessment.Decision,
			"score", assessment.Score,
			"signals", assessment.Signals,
		)
	}
	return result, nil
}

// consumeHostQR authenticates the scanner and burns the presented token.
// Replay outcomes feed the risk evidence; factual rejections (expired,
// unknown, wrong device, wrong event or user) are surfaced as errors without
// a decision. The event and user checks run against the read-only preflight
// so a token presented at the wrong door is not burned for its rightful use;
// both fields are immutable after issuance, so the preflight answer holds
// through the consume.
func (s *Service) consumeHostQR(ctx context.Context, req *Request, m HostQR, ev *risk.Evidence) error {
	sc, err := s.deps.Scanners.Authenticate(ctx, m.ScannerID, req.EventID, m.ScannerSecret)
	if err != nil {
		return err
	}

	status, tok, err := s.deps.Tokens.Validate(ctx, m.QRPayload, req.DeviceHash)
	if err != nil {
		return err
	}
	if status == token.StatusValid {
		if tok.EventID != req.EventID {
			return dErrors.New(dErrors.CodeValidation, "token was issued for a different event")
		}
		if tok.UserID != req.UserID {
			return dErrors.New(dErrors.CodeValidation, "token was issued to a different user")
		}
	}

	res, err := s.deps.Tokens.Consume(ctx, m.QRPayload, sc.ID.String(), req.DeviceHash)
	if err != nil {
		return err
	}

	switch res.Status {
	case token.ConsumeOK:
	case token.ConsumeReplayed, token.ConsumeAlreadyUsed:
		ev.ReplayDetected = true
	case token.ConsumeExpired:
		return dErrors.New(dErrors.CodeValidation, "scan token has expired")
	case token.ConsumeRevoked:
		return dErrors.New(dErrors.CodeConflict, "scan token was revoked")
	case token.ConsumeDeviceMismatch:
		return dErrors.New(dErrors.CodeForbidden, "token is bound to a different device")
	default:
		return dErrors.New(dErrors.CodeNotFound, "unknown scan token")
	}
	return nil
}

// gatherSignals loads the independent evidence sources concurrently.
func (s *Service) gatherSignals(ctx context.Context, req *Request, ev *risk.Evidence, lat, lon *float64, now time.Time) error {
	g, gctx := errgroup.WithContext(ctx)

	if req.DeviceHash != "" {
		g.Go(func() error {
			obs, err := s.deps.Devices.Record(gctx, req.DeviceHash, req.UserID)
			if err != nil {
				return err
			}
			trusted := obs.Trusted()
			ev.DeviceTrusted = &trusted
			return nil
		})
	}

	g.Go(func() error {
		profile, err := s.deps.Trust.Profile(gctx, req.UserID)
		if err != nil {
			return err
		}
		ev.TrustScore = &profile.Score
		return nil
	})

	if lat != nil && lon != nil {
		g.Go(func() error {
			prev, ok, err := s.deps.Verifications.LastLocated(gctx, req.UserID)
			if err != nil || !ok {
				return err
			}
			if now.Sub(prev.CreatedAt) > SpoofWindow {
				return nil
			}
			jump, err := geo.Distance(
				geo.Coordinates{Latitude: *prev.Latitude, Longitude: *prev.Longitude},
				geo.Coordinates{Latitude: *lat, Longitude: *lon},
			)
			if err == nil && jump > SpoofJumpKm {
				ev.SpoofSuspected = true
			}
			return nil
		})
	}

	return g.Wait()
}

// Resolve applies a support adjudication to an escalated verification and
// drifts the trust profile by the resolution delta. Rewards are never
// retroactively granted: counting keys off the original Valid decision.
func (s *Service) Resolve(ctx context.Context, verificationID id.VerificationID, outcome risk.Resolution, resolvedBy, note string) (*ResolutionResult, error) {
	rec, err := s.deps.Verifications.Resolve(ctx, verificationID, outcome, resolvedBy, note)
	if err != nil {
		return nil, err
	}

	before, err := s.deps.Trust.Profile(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}
	profile, err := s.deps.Trust.ApplyResolution(ctx, rec.UserID, outcome)
	if err != nil {
		return nil, err
	}

	if auditErr := s.deps.Audit.Emit(ctx, audit.Event{
		Action:         audit.ActionResolutionApplied,
		Timestamp:      requestcontext.Now(ctx),
		UserID:         rec.UserID,
		EventID:        rec.EventID,
		VerificationID: rec.ID.String(),
		Decision:       string(outcome),
		Reason:         note,
		RequestID:      requestcontext.RequestID(ctx),
	}); auditErr != nil {
		return nil, auditErr
	}

	return &ResolutionResult{
		VerificationID: rec.ID,
		Outcome:        outcome,
		TrustScore:     profile.Score,
		TrustDelta:     profile.Score - before.Score,
	}, nil
}

func (s *Service) emitDecision(ctx context.Context, req Request, rec *verification.Record, assessment *risk.Assessment, replay bool) {
	base := audit.Event{
		Timestamp:      requestcontext.Now(ctx),
		UserID:         req.UserID,
		EventID:        req.EventID,
		VerificationID: rec.ID.String(),
		RequestID:      requestcontext.RequestID(ctx),
	}

	decisionEvent := base
	decisionEvent.Action = audit.ActionDecisionRecorded
	decisionEvent.Decision = string(assessment.Decision)
	if err := s.deps.Audit.Emit(ctx, decisionEvent); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to audit decision", "error", err)
	}

	if replay {
		replayEvent := base
		replayEvent.Action = audit.ActionReplayDetected
		replayEvent.Reason = "scan payload reused"
		if err := s.deps.Audit.Emit(ctx, replayEvent); err != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to audit replay", "error", err)
		}
	}
}
