// Package handler wires the check-in pipeline to HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustgate/internal/checkin"
	"trustgate/internal/risk"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/httputil"
	"trustgate/pkg/requestcontext"
)

// Service defines the check-in operations the handler needs.
type Service interface {
	Evaluate(ctx context.Context, req checkin.Request) (*checkin.Result, error)
	Resolve(ctx context.Context, verificationID id.VerificationID, outcome risk.Resolution, resolvedBy, note string) (*checkin.ResolutionResult, error)
}

// Handler wires check-in endpoints to the pipeline service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts check-in endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/checkin/validate", h.HandleValidate)
	r.Post("/verifications/{verificationID}/resolution", h.HandleResolution)
}

// HandleValidate handles POST /checkin/validate requests.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	domainReq := req.Parsed()
	if domainReq.DeviceHash == "" {
		// Fall back to the fingerprint computed by the middleware chain.
		domainReq.DeviceHash = requestcontext.DeviceFingerprint(ctx)
	}

	result, err := h.service.Evaluate(ctx, domainReq)
	if err != nil {
		h.logger.ErrorContext(ctx, "check-in evaluation failed",
			"request_id", requestID,
			"user_id", req.UserID,
			"event_id", req.EventID,
			"mode", req.Mode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "check-in evaluated",
		"request_id", requestID,
		"user_id", req.UserID,
		"event_id", req.EventID,
		"mode", req.Mode,
		"decision", result.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleResolution handles POST /verifications/{verificationID}/resolution.
func (h *Handler) HandleResolution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid verification id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[ResolutionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Resolve(ctx, verificationID, req.ParsedOutcome(), req.ResolvedBy, req.Note)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolution failed",
			"request_id", requestID,
			"verification_id", verificationID,
			"outcome", req.Outcome,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification resolved",
		"request_id", requestID,
		"verification_id", verificationID,
		"outcome", req.Outcome,
	)

	httputil.WriteJSON(w, http.StatusOK, FromResolution(result))
}
