// Package token issues and consumes single-use scan tokens. The QR payload a
// client renders is a signed JWT embedding the token identifier; the store
// record remains authoritative for expiry, consumption, and revocation.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trustgate/internal/token/metrics"
	"trustgate/internal/token/scanlog"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/sentinel"
	"trustgate/pkg/requestcontext"
)

const (
	// Allowed issuance validity range.
	MinValidityMinutes = 5
	MaxValidityMinutes = 1440

	// ReplayWindow is how long a payload hash stays hot in the scan log.
	ReplayWindow = 60 * time.Second
)

type payloadClaims struct {
	EventID    string `json:"eve"`
	DeviceHash string `json:"dev,omitempty"`
	jwt.RegisteredClaims
}

// Service is the scan token engine: issuance, read-only validation, atomic
// consumption with replay detection, and owner-gated revocation.
type Service struct {
	store      Store
	scans      scanlog.Log
	signingKey []byte
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(st Store, scans scanlog.Log, signingKey []byte, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if scans == nil {
		return nil, fmt.Errorf("scan log is required")
	}
	if len(signingKey) == 0 {
		return nil, fmt.Errorf("signing key is required")
	}
	svc := &Service{store: st, scans: scans, signingKey: signingKey}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue creates a token bound to (user, event) and optionally to a device
// fingerprint, valid for the requested number of minutes.
func (s *Service) Issue(ctx context.Context, userID id.UserID, eventID id.EventID, validityMinutes int, deviceBinding string) (*Issued, error) {
	if userID.IsNil() || eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user and event are required")
	}
	if validityMinutes < MinValidityMinutes || validityMinutes > MaxValidityMinutes {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("validity must be between %d and %d minutes", MinValidityMinutes, MaxValidityMinutes))
	}

	now := requestcontext.Now(ctx)
	tok := &ScanToken{
		ID:         id.NewTokenID(),
		UserID:     userID,
		EventID:    eventID,
		DeviceHash: deviceBinding,
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Duration(validityMinutes) * time.Minute),
	}

	payload, err := s.signPayload(tok)
	if err != nil {
		return nil, fmt.Errorf("sign qr payload: %w", err)
	}
	tok.PayloadHash = HashPayload(payload)

	if err := s.store.Create(ctx, tok); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist scan token")
	}

	s.metrics.IncrementIssued()
	if s.logger != nil {
		s.logger.InfoContext(ctx, "scan token issued",
			"token_id", tok.ID,
			"user_id", userID,
			"event_id", eventID,
			"expires_at", tok.ExpiresAt,
			"device_bound", deviceBinding != "",
		)
	}
	return &Issued{Token: tok, QRPayload: payload, ExpiresAt: tok.ExpiresAt}, nil
}

// Validate classifies a presented payload without mutating anything.
func (s *Service) Validate(ctx context.Context, qrPayload, presentedDevice string) (ValidateStatus, *ScanToken, error) {
	tokenID, err := s.parsePayload(qrPayload)
	if err != nil {
		return StatusUnknown, nil, nil
	}

	tok, err := s.store.Find(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return StatusUnknown, nil, nil
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scan token")
	}

	now := requestcontext.Now(ctx)
	switch {
	case tok.Consumed:
		return StatusAlreadyUsed, tok, nil
	case tok.Revoked:
		return StatusRevoked, tok, nil
	case tok.Expired(now):
		return StatusExpired, tok, nil
	case tok.DeviceHash != "" && tok.DeviceHash != presentedDevice:
		return StatusDeviceMismatch, tok, nil
	default:
		return StatusValid, tok, nil
	}
}

// Consume is the single-use transition. The scan log is touched first so a
// cloned payload is rejected even when it maps to a different token record;
// the store consume is atomic, so concurrent attempts on one token yield
// exactly one ConsumeOK.
func (s *Service) Consume(ctx context.Context, qrPayload, scannerID, presentedDevice string) (*ConsumeResult, error) {
	tokenID, err := s.parsePayload(qrPayload)
	if err != nil {
		s.metrics.IncrementConsume(string(ConsumeUnknown))
		return &ConsumeResult{Status: ConsumeUnknown}, nil
	}

	seen, err := s.scans.Touch(ctx, HashPayload(qrPayload))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan log unavailable")
	}
	if seen {
		s.metrics.IncrementReplay()
		s.metrics.IncrementConsume(string(ConsumeReplayed))
		tok, _ := s.store.Find(ctx, tokenID)
		s.warn(ctx, "payload replay inside scan window", tokenID)
		return &ConsumeResult{Status: ConsumeReplayed, Token: tok}, nil
	}

	// Device binding is checked before consuming so a mismatched presentation
	// does not burn the token for its rightful owner.
	pre, err := s.store.Find(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementConsume(string(ConsumeUnknown))
			return &ConsumeResult{Status: ConsumeUnknown}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scan token")
	}
	if pre.DeviceHash != "" && pre.DeviceHash != presentedDevice {
		s.metrics.IncrementConsume(string(ConsumeDeviceMismatch))
		return &ConsumeResult{Status: ConsumeDeviceMismatch, Token: pre}, nil
	}

	now := requestcontext.Now(ctx)
	tok, err := s.store.Consume(ctx, tokenID, scannerID, now)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			s.metrics.IncrementConsume(string(ConsumeAlreadyUsed))
			s.warn(ctx, "consumption attempt on used token", tokenID)
			return &ConsumeResult{Status: ConsumeAlreadyUsed, Token: tok}, nil
		case errors.Is(err, sentinel.ErrExpired):
			s.metrics.IncrementConsume(string(ConsumeExpired))
			return &ConsumeResult{Status: ConsumeExpired, Token: tok}, nil
		case errors.Is(err, sentinel.ErrInvalidState):
			s.metrics.IncrementConsume(string(ConsumeRevoked))
			return &ConsumeResult{Status: ConsumeRevoked, Token: tok}, nil
		case errors.Is(err, sentinel.ErrNotFound):
			s.metrics.IncrementConsume(string(ConsumeUnknown))
			return &ConsumeResult{Status: ConsumeUnknown}, nil
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume scan token")
		}
	}

	s.metrics.IncrementConsume(string(ConsumeOK))
	return &ConsumeResult{Status: ConsumeOK, Token: tok}, nil
}

// Revoke invalidates an unconsumed token. Only the issuing user may revoke.
func (s *Service) Revoke(ctx context.Context, tokenID id.TokenID, requestingUser id.UserID) error {
	tok, err := s.store.Find(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "token not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load scan token")
	}
	if tok.UserID != requestingUser {
		return dErrors.New(dErrors.CodeForbidden, "only the issuing user may revoke a token")
	}

	if err := s.store.Revoke(ctx, tokenID, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeConflict, "token has already been consumed")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke scan token")
	}
	return nil
}

// HashPayload returns the SHA-256 hex digest used to key the scan log and the
// stored payload hash.
func HashPayload(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func (s *Service) signPayload(tok *ScanToken) (string, error) {
	claims := payloadClaims{
		EventID:    tok.EventID.String(),
		DeviceHash: tok.DeviceHash,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tok.ID.String(),
			Subject:   tok.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(tok.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(tok.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// parsePayload verifies the signature and extracts the token identifier.
// Claim expiry is deliberately not validated here: the store record is the
// authority, and an expired presentation must classify as expired, not unknown.
func (s *Service) parsePayload(qrPayload string) (id.TokenID, error) {
	var claims payloadClaims
	_, err := jwt.ParseWithClaims(qrPayload, &claims,
		func(t *jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return id.TokenID{}, fmt.Errorf("parse qr payload: %w", err)
	}
	return id.ParseTokenID(claims.ID)
}

func (s *Service) warn(ctx context.Context, msg string, tokenID id.TokenID) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, "token_id", tokenID)
	}
}
