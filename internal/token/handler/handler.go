// Package handler wires scan-token endpoints to HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trustgate/internal/token"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/httputil"
	"trustgate/pkg/requestcontext"
)

// Service defines the token operations the handler needs.
type Service interface {
	Issue(ctx context.Context, userID id.UserID, eventID id.EventID, validityMinutes int, deviceBinding string) (*token.Issued, error)
	Validate(ctx context.Context, qrPayload, presentedDevice string) (token.ValidateStatus, *token.ScanToken, error)
	Revoke(ctx context.Context, tokenID id.TokenID, requestingUser id.UserID) error
}

// Handler wires token endpoints to the token service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts token endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tokens/issue", h.HandleIssue)
	r.Post("/tokens/validate", h.HandleValidate)
	r.Post("/tokens/{tokenID}/revoke", h.HandleRevoke)
}

// HandleIssue handles POST /tokens/issue requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	deviceBinding := req.DeviceHash
	if deviceBinding == "" && req.BindDevice {
		deviceBinding = requestcontext.DeviceFingerprint(ctx)
	}

	issued, err := h.service.Issue(ctx, req.ParsedUserID(), req.ParsedEventID(), req.Validity(), deviceBinding)
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed",
			"request_id", requestID,
			"user_id", req.UserID,
			"event_id", req.EventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token issued",
		"request_id", requestID,
		"token_id", issued.Token.ID,
		"user_id", req.UserID,
		"event_id", req.EventID,
	)

	httputil.WriteJSON(w, http.StatusCreated, FromIssued(issued))
}

// HandleValidate handles POST /tokens/validate requests. This is the
// read-only preflight; it never consumes the token.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	device := req.DeviceHash
	if device == "" {
		device = requestcontext.DeviceFingerprint(ctx)
	}

	status, tok, err := h.service.Validate(ctx, req.QRPayload, device)
	if err != nil {
		h.logger.ErrorContext(ctx, "token validation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromValidation(status, tok))
}

// HandleRevoke handles POST /tokens/{tokenID}/revoke requests.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tokenID, err := id.ParseTokenID(chi.URLParam(r, "tokenID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid token id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Revoke(ctx, tokenID, req.ParsedUserID()); err != nil {
		h.logger.ErrorContext(ctx, "token revocation failed",
			"request_id", requestID,
			"token_id", tokenID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token revoked",
		"request_id", requestID,
		"token_id", tokenID,
	)
	w.WriteHeader(http.StatusNoContent)
}
