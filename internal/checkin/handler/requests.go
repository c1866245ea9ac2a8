package handler

import (
	"strings"

	"trustgate/internal/checkin"
	"trustgate/internal/risk"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
)

// ValidateRequest is the HTTP request body for POST /checkin/validate.
type ValidateRequest struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
	Mode    string `json:"mode"`

	// Self check-in position; required for self_check, optional for host_qr
	// scanners that report one.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Host scan fields, required for host_qr.
	QRPayload     string `json:"qr_payload,omitempty"`
	ScannerID     string `json:"scanner_id,omitempty"`
	ScannerSecret string `json:"scanner_secret,omitempty"`

	DeviceHash    string `json:"device_hash,omitempty"`
	HostConfirmed *bool  `json:"host_confirmed,omitempty"`

	parsed checkin.Request
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ValidateRequest) Validate() error {
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

	r.parsed = checkin.Request{
		UserID:        userID,
		EventID:       eventID,
		DeviceHash:    strings.TrimSpace(r.DeviceHash),
		HostConfirmed: r.HostConfirmed,
	}

	switch risk.Mode(r.Mode) {
	case risk.ModeSelfCheck:
		if r.Latitude == nil || r.Longitude == nil {
			return dErrors.New(dErrors.CodeValidation, "latitude and longitude are required for self check-in")
		}
		r.parsed.Mode = checkin.SelfCheck{Latitude: *r.Latitude, Longitude: *r.Longitude}

	case risk.ModeHostQR:
		if strings.TrimSpace(r.QRPayload) == "" {
			return dErrors.New(dErrors.CodeValidation, "qr_payload is required for host scans")
		}
		scannerID, err := id.ParseScannerID(strings.TrimSpace(r.ScannerID))
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "scanner_id must be a UUID")
		}
		if r.ScannerSecret == "" {
			return dErrors.New(dErrors.CodeValidation, "scanner_secret is required for host scans")
		}
		r.parsed.Mode = checkin.HostQR{
			QRPayload:     strings.TrimSpace(r.QRPayload),
			ScannerID:     scannerID,
			ScannerSecret: r.ScannerSecret,
			Latitude:      r.Latitude,
			Longitude:     r.Longitude,
		}

	default:
		return dErrors.New(dErrors.CodeValidation, "mode must be self_check or host_qr")
	}

	return nil
}

// Parsed returns the validated domain request.
func (r *ValidateRequest) Parsed() checkin.Request {
	return r.parsed
}

// ResolutionRequest is the HTTP request body for
// POST /verifications/{verificationID}/resolution.
type ResolutionRequest struct {
	Outcome    string `json:"outcome"`
	ResolvedBy string `json:"resolved_by"`
	Note       string `json:"note,omitempty"`

	parsedOutcome risk.Resolution
}

// Validate validates and parses the request.
func (r *ResolutionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	outcome := risk.Resolution(strings.TrimSpace(r.Outcome))
	if !outcome.Known() {
		return dErrors.New(dErrors.CodeValidation, "outcome must be confirmed_fraud, confirmed_valid, or inconclusive")
	}
	r.parsedOutcome = outcome

	r.ResolvedBy = strings.TrimSpace(r.ResolvedBy)
	if r.ResolvedBy == "" {
		return dErrors.New(dErrors.CodeValidation, "resolved_by is required")
	}
	if len(r.Note) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "note must be at most 1000 characters")
	}
	return nil
}

// ParsedOutcome returns the validated resolution outcome.
func (r *ResolutionRequest) ParsedOutcome() risk.Resolution {
	return r.parsedOutcome
}
