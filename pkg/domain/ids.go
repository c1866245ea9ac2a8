// Package domain holds the shared identifier types used across stores and
// services. Wrapping uuid.UUID in distinct types keeps user, event, token,
// and verification identifiers from being swapped at call sites.
package domain

import "github.com/google/uuid"

type (
	// UserID identifies an attendee or host account.
	UserID uuid.UUID
	// EventID identifies an event in the collaborating event catalog.
	EventID uuid.UUID
	// TokenID identifies a single-use scan token.
	TokenID uuid.UUID
	// VerificationID identifies one verification attempt in the audit log.
	VerificationID uuid.UUID
	// ScannerID identifies a registered host scanner device.
	ScannerID uuid.UUID
	// PredictionID identifies a logged no-show prediction.
	PredictionID uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id EventID) String() string        { return uuid.UUID(id).String() }
func (id TokenID) String() string        { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }
func (id ScannerID) String() string      { return uuid.UUID(id).String() }
func (id PredictionID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id TokenID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id VerificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ScannerID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id PredictionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewEventID returns a fresh random event identifier.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewTokenID returns a fresh random token identifier.
func NewTokenID() TokenID { return TokenID(uuid.New()) }

// NewVerificationID returns a fresh random verification identifier.
func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }

// NewScannerID returns a fresh random scanner identifier.
func NewScannerID() ScannerID { return ScannerID(uuid.New()) }

// NewPredictionID returns a fresh random prediction identifier.
func NewPredictionID() PredictionID { return PredictionID(uuid.New()) }

// ParseUserID parses the canonical string form of a user identifier.
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	return UserID(u), err
}

// ParseEventID parses the canonical string form of an event identifier.
func ParseEventID(s string) (EventID, error) {
	u, err := uuid.Parse(s)
	return EventID(u), err
}

// ParseTokenID parses the canonical string form of a token identifier.
func ParseTokenID(s string) (TokenID, error) {
	u, err := uuid.Parse(s)
	return TokenID(u), err
}

// ParseVerificationID parses the canonical string form of a verification identifier.
func ParseVerificationID(s string) (VerificationID, error) {
	u, err := uuid.Parse(s)
	return VerificationID(u), err
}

// ParseScannerID parses the canonical string form of a scanner identifier.
func ParseScannerID(s string) (ScannerID, error) {
	u, err := uuid.Parse(s)
	return ScannerID(u), err
}

// ParsePredictionID parses the canonical string form of a prediction identifier.
func ParsePredictionID(s string) (PredictionID, error) {
	u, err := uuid.Parse(s)
	return PredictionID(u), err
}

// Text marshaling keeps the canonical UUID string form in JSON payloads.

func (id UserID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id EventID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id TokenID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id VerificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ScannerID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id PredictionID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *EventID) UnmarshalText(b []byte) error {
	parsed, err := ParseEventID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *TokenID) UnmarshalText(b []byte) error {
	parsed, err := ParseTokenID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *VerificationID) UnmarshalText(b []byte) error {
	parsed, err := ParseVerificationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ScannerID) UnmarshalText(b []byte) error {
	parsed, err := ParseScannerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *PredictionID) UnmarshalText(b []byte) error {
	parsed, err := ParsePredictionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
