package handler

import (
	"strings"
	"time"

	"trustgate/internal/noshow"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
)

// PredictRequest is the HTTP request body for POST /noshow/predict. Optional
// fields may be omitted; the model imputes defaults and reports a lower
// confidence.
type PredictRequest struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`

	EventStart time.Time `json:"event_start"`
	PriceMode  string    `json:"price_mode"`

	NoShowRate        *float64   `json:"no_show_rate,omitempty"`
	LateCancelRate    *float64   `json:"late_cancel_rate,omitempty"`
	TotalRSVPs        *int       `json:"total_rsvps,omitempty"`
	DistanceKm        *float64   `json:"distance_km,omitempty"`
	TypicalDistanceKm *float64   `json:"typical_distance_km,omitempty"`
	HostRating        *float64   `json:"host_rating,omitempty"`
	RSVPAt            *time.Time `json:"rsvp_at,omitempty"`
	PaymentCompleted  *bool      `json:"payment_completed,omitempty"`
	PaymentMinutes    *int       `json:"payment_minutes,omitempty"`

	parsedUserID  id.UserID
	parsedEventID id.EventID
	parsedPrice   noshow.PriceMode
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *PredictRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "user_id must be a UUID")
	}
	eventID, err := id.ParseEventID(strings.TrimSpace(r.EventID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "event_id must be a UUID")
	}
	r.parsedUserID = userID
	r.parsedEventID = eventID

	if r.EventStart.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "event_start is required")
	}

	switch noshow.PriceMode(r.PriceMode) {
	case noshow.PriceFree, noshow.PricePaid, noshow.PricePayInPerson:
		r.parsedPrice = noshow.PriceMode(r.PriceMode)
	default:
		return dErrors.New(dErrors.CodeValidation, "price_mode must be free, paid, or pay_in_person")
	}

	if r.NoShowRate != nil && (*r.NoShowRate < 0 || *r.NoShowRate > 1) {
		return dErrors.New(dErrors.CodeValidation, "no_show_rate must be between 0 and 1")
	}
	if r.LateCancelRate != nil && (*r.LateCancelRate < 0 || *r.LateCancelRate > 1) {
		return dErrors.New(dErrors.CodeValidation, "late_cancel_rate must be between 0 and 1")
	}
	if r.HostRating != nil && (*r.HostRating < 0 || *r.HostRating > 5) {
		return dErrors.New(dErrors.CodeValidation, "host_rating must be between 0 and 5")
	}
	if r.DistanceKm != nil && *r.DistanceKm < 0 {
		return dErrors.New(dErrors.CodeValidation, "distance_km must be non-negative")
	}

	return nil
}

// ParsedUserID returns the validated user ID.
func (r *PredictRequest) ParsedUserID() id.UserID { return r.parsedUserID }

// ParsedEventID returns the validated event ID.
func (r *PredictRequest) ParsedEventID() id.EventID { return r.parsedEventID }

// Input maps the request onto the model's booking-time context.
func (r *PredictRequest) Input() noshow.Input {
	return noshow.Input{
		NoShowRate:        r.NoShowRate,
		LateCancelRate:    r.LateCancelRate,
		TotalRSVPs:        r.TotalRSVPs,
		PriceMode:         r.parsedPrice,
		DistanceKm:        r.DistanceKm,
		TypicalDistanceKm: r.TypicalDistanceKm,
		HostRating:        r.HostRating,
		RSVPAt:            r.RSVPAt,
		EventStart:        r.EventStart,
		PaymentCompleted:  r.PaymentCompleted,
		PaymentMinutes:    r.PaymentMinutes,
	}
}

// OutcomeRequest is the HTTP request body for POST /noshow/outcome.
type OutcomeRequest struct {
	UserID   string `json:"user_id"`
	EventID  string `json:"event_id"`
	Outcome  string `json:"outcome"`
	Override bool   `json:"override,omitempty"`

	parsedUserID  id.UserID
	parsedEventID id.EventID
	parsedOutcome noshow.Outcome
}

// Validate validates and parses the request.
func (r *OutcomeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "user_id must be a UUID")
	}
	eventID, err := id.ParseEventID(strings.TrimSpace(r.EventID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "event_id must be a UUID")
	}
	r.parsedUserID = userID
	r.parsedEventID = eventID

	outcome := noshow.Outcome(strings.TrimSpace(r.Outcome))
	if !outcome.Known() {
		return dErrors.New(dErrors.CodeValidation, "outcome must be attended, no_show, or cancelled")
	}
	r.parsedOutcome = outcome
	return nil
}

// ParsedUserID returns the validated user ID.
func (r *OutcomeRequest) ParsedUserID() id.UserID { return r.parsedUserID }

// ParsedEventID returns the validated event ID.
func (r *OutcomeRequest) ParsedEventID() id.EventID { return r.parsedEventID }

// ParsedOutcome returns the validated outcome.
func (r *OutcomeRequest) ParsedOutcome() noshow.Outcome { return r.parsedOutcome }
