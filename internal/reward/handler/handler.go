// Package handler exposes reward state over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustgate/internal/reward"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/httputil"
	"trustgate/pkg/requestcontext"
)

// Service defines the reward operations the handler needs.
type Service interface {
	State(ctx context.Context, userID id.UserID) (*reward.State, error)
}

// Handler wires reward endpoints to the reward service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts reward endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/rewards/{userID}", h.HandleState)
}

// HandleState handles GET /rewards/{userID} requests.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	state, err := h.service.State(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "reward state lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromState(state))
}

// StateResponse is the HTTP response for GET /rewards/{userID}.
type StateResponse struct {
	UserID          string    `json:"user_id"`
	RollingCount    int       `json:"rolling_count"`
	LifetimeCount   int       `json:"lifetime_count"`
	Tier            string    `json:"tier"`
	DiscountPercent int       `json:"discount_percent"`
	GoldStacks      int       `json:"gold_stacks"`
	Badge           string    `json:"badge,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FromState converts a domain reward state to an HTTP response.
func FromState(state *reward.State) *StateResponse {
	return &StateResponse{
		UserID:          state.UserID.String(),
		RollingCount:    state.RollingCount,
		LifetimeCount:   state.LifetimeCount,
		Tier:            string(state.Tier),
		DiscountPercent: state.DiscountPercent,
		GoldStacks:      state.GoldStacks,
		Badge:           string(state.Badge),
		UpdatedAt:       state.UpdatedAt,
	}
}
