package scanner

import (
	"time"

	id "trustgate/pkg/domain"
)

// Scanner is a registered host scanning device. The plaintext secret is never
// stored; only its bcrypt hash survives registration.
type Scanner struct {
	ID         id.ScannerID
	EventID    id.EventID
	HostID     id.UserID
	Label      string
	SecretHash string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// Registered is the registration response carrying the one-time plaintext.
type Registered struct {
	Scanner *Scanner
	Secret  string
}
