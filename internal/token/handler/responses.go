package handler

import (
	"time"

	"trustgate/internal/token"
)

// IssueResponse is the HTTP response for POST /tokens/issue.
type IssueResponse struct {
	TokenID   string    `json:"token_id"`
	QRPayload string    `json:"qr_payload"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FromIssued converts an issuance result to an HTTP response.
func FromIssued(issued *token.Issued) *IssueResponse {
	return &IssueResponse{
		TokenID:   issued.Token.ID.String(),
		QRPayload: issued.QRPayload,
		ExpiresAt: issued.ExpiresAt,
	}
}

// ValidateResponse is the HTTP response for POST /tokens/validate.
type ValidateResponse struct {
	Status    string     `json:"status"`
	TokenID   string     `json:"token_id,omitempty"`
	EventID   string     `json:"event_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// FromValidation converts a read-only validation outcome to an HTTP response.
// The token detail is included only when the record was found.
func FromValidation(status token.ValidateStatus, tok *token.ScanToken) *ValidateResponse {
	resp := &ValidateResponse{Status: string(status)}
	if tok != nil {
		resp.TokenID = tok.ID.String()
		resp.EventID = tok.EventID.String()
		expires := tok.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}
