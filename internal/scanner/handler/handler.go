// Package handler wires scanner registration to HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"trustgate/internal/scanner"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
	"trustgate/pkg/platform/httputil"
	"trustgate/pkg/requestcontext"
)

// Service defines the scanner operations the handler needs.
type Service interface {
	Register(ctx context.Context, eventID id.EventID, hostID id.UserID, label string) (*scanner.Registered, error)
}

// Handler wires scanner endpoints to the scanner service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts scanner endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/scanners", h.HandleRegister)
}

// HandleRegister handles POST /scanners requests. The plaintext secret is
// returned exactly once; only its hash is stored.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	registered, err := h.service.Register(ctx, req.ParsedEventID(), req.ParsedHostID(), req.Label)
	if err != nil {
		h.logger.ErrorContext(ctx, "scanner registration failed",
			"request_id", requestID,
			"event_id", req.EventID,
			"host_id", req.HostID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "scanner registered",
		"request_id", requestID,
		"scanner_id", registered.Scanner.ID,
		"event_id", req.EventID,
	)

	httputil.WriteJSON(w, http.StatusCreated, FromRegistered(registered))
}

// RegisterRequest is the HTTP request body for POST /scanners.
type RegisterRequest struct {
	EventID string `json:"event_id"`
	HostID  string `json:"host_id"`
	Label   string `json:"label"`

	parsedEventID id.EventID
	parsedHostID  id.UserID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	eventID, err := id.ParseEventID(strings.TrimSpace(r.EventID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "event_id must be a UUID")
	}
	hostID, err := id.ParseUserID(strings.TrimSpace(r.HostID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "host_id must be a UUID")
	}
	r.parsedEventID = eventID
	r.parsedHostID = hostID

	r.Label = strings.TrimSpace(r.Label)
	if r.Label == "" {
		return dErrors.New(dErrors.CodeValidation, "label is required")
	}
	if len(r.Label) > 100 {
		return dErrors.New(dErrors.CodeValidation, "label must be at most 100 characters")
	}
	return nil
}

// ParsedEventID returns the validated event ID.
func (r *RegisterRequest) ParsedEventID() id.EventID { return r.parsedEventID }

// ParsedHostID returns the validated host ID.
func (r *RegisterRequest) ParsedHostID() id.UserID { return r.parsedHostID }

// RegisterResponse is the HTTP response for POST /scanners.
type RegisterResponse struct {
	ScannerID string    `json:"scanner_id"`
	EventID   string    `json:"event_id"`
	Label     string    `json:"label"`
	Secret    string    `json:"secret"`
	CreatedAt time.Time `json:"created_at"`
}

// FromRegistered converts a registration result to an HTTP response.
func FromRegistered(reg *scanner.Registered) *RegisterResponse {
	return &RegisterResponse{
		ScannerID: reg.Scanner.ID.String(),
		EventID:   reg.Scanner.EventID.String(),
		Label:     reg.Scanner.Label,
		Secret:    reg.Secret,
		CreatedAt: reg.Scanner.CreatedAt,
	}
}
