// Package handler exposes the verification audit log over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"trustgate/internal/verification"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/httputil"
	"trustgate/pkg/requestcontext"
)

// Service defines the audit-log read operations the handler needs.
type Service interface {
	Get(ctx context.Context, recID id.VerificationID) (*verification.Record, error)
	ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*verification.Record, error)
	ListByEvent(ctx context.Context, eventID id.EventID, limit int) ([]*verification.Record, error)
}

// Handler wires verification read endpoints to the audit-log service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/verifications", h.HandleList)
	r.Get("/verifications/{verificationID}", h.HandleGet)
}

// HandleGet handles GET /verifications/{verificationID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid verification id"))
		return
	}

	rec, err := h.service.Get(ctx, recID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

// HandleList handles GET /verifications requests filtered by exactly one of
// user_id or event_id.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userParam := strings.TrimSpace(r.URL.Query().Get("user_id"))
	eventParam := strings.TrimSpace(r.URL.Query().Get("event_id"))
	if (userParam == "") == (eventParam == "") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "exactly one of user_id or event_id is required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	var (
		records []*verification.Record
		err     error
	)
	if userParam != "" {
		userID, parseErr := id.ParseUserID(userParam)
		if parseErr != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "user_id must be a UUID"))
			return
		}
		records, err = h.service.ListByUser(ctx, userID, limit)
	} else {
		eventID, parseErr := id.ParseEventID(eventParam)
		if parseErr != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "event_id must be a UUID"))
			return
		}
		records, err = h.service.ListByEvent(ctx, eventID, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "verification listing failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := ListResponse{Records: make([]*RecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.Records = append(resp.Records, FromRecord(rec))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ListResponse is the HTTP response for GET /verifications.
type ListResponse struct {
	Records []*RecordResponse `json:"records"`
}

// RecordResponse is one audit-log entry.
type RecordResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	EventID    string              `json:"event_id"`
	Mode       string              `json:"mode"`
	Decision   string              `json:"decision"`
	RiskScore  float64             `json:"risk_score"`
	Signals    []string            `json:"signals"`
	DeviceHash string              `json:"device_hash,omitempty"`
	Latitude   *float64            `json:"latitude,omitempty"`
	Longitude  *float64            `json:"longitude,omitempty"`
	DistanceKm *float64            `json:"distance_km,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	Resolution *ResolutionResponse `json:"resolution,omitempty"`
}

// ResolutionResponse is the resolution portion of an audit-log entry.
type ResolutionResponse struct {
	Outcome    string    `json:"outcome"`
	ResolvedBy string    `json:"resolved_by"`
	Note       string    `json:"note,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// FromRecord converts a domain record to an HTTP response.
func FromRecord(rec *verification.Record) *RecordResponse {
	resp := &RecordResponse{
		ID:         rec.ID.String(),
		UserID:     rec.UserID.String(),
		EventID:    rec.EventID.String(),
		Mode:       string(rec.Mode),
		Decision:   string(rec.Decision),
		RiskScore:  rec.Score,
		Signals:    make([]string, 0, len(rec.Signals)),
		DeviceHash: rec.DeviceHash,
		Latitude:   rec.Latitude,
		Longitude:  rec.Longitude,
		DistanceKm: rec.DistanceKm,
		CreatedAt:  rec.CreatedAt,
	}
	for _, sig := range rec.Signals {
		resp.Signals = append(resp.Signals, string(sig))
	}
	if rec.Resolution != nil {
		resp.Resolution = &ResolutionResponse{
			Outcome:    string(rec.Resolution.Outcome),
			ResolvedBy: rec.Resolution.ResolvedBy,
			Note:       rec.Resolution.Note,
			ResolvedAt: rec.Resolution.ResolvedAt,
		}
	}
	return resp
}
