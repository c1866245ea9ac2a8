// Package handler wires the no-show forecaster to HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustgate/internal/noshow"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/httputil"
	"trustgate/pkg/requestcontext"
)

// Service defines the forecasting operations the handler needs.
type Service interface {
	Predict(ctx context.Context, userID id.UserID, eventID id.EventID, in noshow.Input) (*noshow.Prediction, error)
	RecordOutcome(ctx context.Context, userID id.UserID, eventID id.EventID, outcome noshow.Outcome, override bool) (*noshow.Prediction, error)
}

// Handler wires forecasting endpoints to the no-show service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts forecasting endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/noshow/predict", h.HandlePredict)
	r.Post("/noshow/outcome", h.HandleOutcome)
}

// HandlePredict handles POST /noshow/predict requests.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PredictRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	prediction, err := h.service.Predict(ctx, req.ParsedUserID(), req.ParsedEventID(), req.Input())
	if err != nil {
		h.logger.ErrorContext(ctx, "prediction failed",
			"request_id", requestID,
			"user_id", req.UserID,
			"event_id", req.EventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromPrediction(prediction))
}

// HandleOutcome handles POST /noshow/outcome requests.
func (h *Handler) HandleOutcome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[OutcomeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	prediction, err := h.service.RecordOutcome(ctx, req.ParsedUserID(), req.ParsedEventID(), req.ParsedOutcome(), req.Override)
	if err != nil {
		h.logger.ErrorContext(ctx, "outcome recording failed",
			"request_id", requestID,
			"user_id", req.UserID,
			"event_id", req.EventID,
			"outcome", req.Outcome,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "prediction outcome recorded",
		"request_id", requestID,
		"prediction_id", prediction.ID,
		"outcome", req.Outcome,
	)

	httputil.WriteJSON(w, http.StatusOK, FromPrediction(prediction))
}

// PredictResponse is the HTTP response for both forecasting endpoints.
type PredictResponse struct {
	PredictionID      string                 `json:"prediction_id"`
	UserID            string                 `json:"user_id"`
	EventID           string                 `json:"event_id"`
	Probability       float64                `json:"probability"`
	Confidence        float64                `json:"confidence"`
	ModelVersion      string                 `json:"model_version"`
	Features          noshow.FeatureSnapshot `json:"features"`
	CreatedAt         time.Time              `json:"created_at"`
	Outcome           *string                `json:"outcome,omitempty"`
	OutcomeRecordedAt *time.Time             `json:"outcome_recorded_at,omitempty"`
}

// FromPrediction converts a domain prediction to an HTTP response.
func FromPrediction(p *noshow.Prediction) *PredictResponse {
	resp := &PredictResponse{
		PredictionID:      p.ID.String(),
		UserID:            p.UserID.String(),
		EventID:           p.EventID.String(),
		Probability:       p.Probability,
		Confidence:        p.Confidence,
		ModelVersion:      p.ModelVersion,
		Features:          p.Features,
		CreatedAt:         p.CreatedAt,
		OutcomeRecordedAt: p.OutcomeRecordedAt,
	}
	if p.Outcome != nil {
		outcome := string(*p.Outcome)
		resp.Outcome = &outcome
	}
	return resp
}
