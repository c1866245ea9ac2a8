package handler

import (
	"strings"

	"trustgate/internal/token"
	id "trustgate/pkg/domain"
	dErrors "trustgate/pkg/domain-errors"
)

// DefaultValidityMinutes applies when the caller leaves validity unset.
const DefaultValidityMinutes = 30

// IssueRequest is the HTTP request body for POST /tokens/issue.
type IssueRequest struct {
	UserID          string `json:"user_id"`
	EventID         string `json:"event_id"`
	ValidityMinutes int    `json:"validity_minutes,omitempty"`

	// DeviceHash binds the token to a specific fingerprint. BindDevice binds
	// to the caller's own fingerprint without the client computing it.
	DeviceHash string `json:"device_hash,omitempty"`
	BindDevice bool   `json:"bind_device,omitempty"`

	parsedUserID  id.UserID
	parsedEventID id.EventID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *IssueRequest) Validate() error {
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

	if r.ValidityMinutes != 0 &&
		(r.ValidityMinutes < token.MinValidityMinutes || r.ValidityMinutes > token.MaxValidityMinutes) {
		return dErrors.New(dErrors.CodeValidation, "validity_minutes is out of range")
	}

	r.DeviceHash = strings.TrimSpace(r.DeviceHash)
	return nil
}

// ParsedUserID returns the validated user ID.
func (r *IssueRequest) ParsedUserID() id.UserID { return r.parsedUserID }

// ParsedEventID returns the validated event ID.
func (r *IssueRequest) ParsedEventID() id.EventID { return r.parsedEventID }

// Validity returns the requested validity, defaulted when unset.
func (r *IssueRequest) Validity() int {
	if r.ValidityMinutes == 0 {
		return DefaultValidityMinutes
	}
	return r.ValidityMinutes
}

// ValidateRequest is the HTTP request body for POST /tokens/validate.
type ValidateRequest struct {
	QRPayload  string `json:"qr_payload"`
	DeviceHash string `json:"device_hash,omitempty"`
}

// Validate validates the request.
func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.QRPayload = strings.TrimSpace(r.QRPayload)
	if r.QRPayload == "" {
		return dErrors.New(dErrors.CodeValidation, "qr_payload is required")
	}
	r.DeviceHash = strings.TrimSpace(r.DeviceHash)
	return nil
}

// RevokeRequest is the HTTP request body for POST /tokens/{tokenID}/revoke.
type RevokeRequest struct {
	UserID string `json:"user_id"`

	parsedUserID id.UserID
}

// Validate validates and parses the request.
func (r *RevokeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "user_id must be a UUID")
	}
	r.parsedUserID = userID
	return nil
}

// ParsedUserID returns the validated user ID.
func (r *RevokeRequest) ParsedUserID() id.UserID { return r.parsedUserID }
