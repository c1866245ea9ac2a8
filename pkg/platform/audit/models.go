// Package audit captures key verification actions for compliance and
// security review. Events are transport-agnostic so stores and sinks can
// fan out.
package audit

import (
	"time"

	id "trustgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, enabling
// different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with dispute/regulatory significance
	// and long retention, such as decisions and resolutions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events that feed fraud monitoring and alerting,
	// such as replays and revocations.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Action names what happened.
type Action string

const (
	ActionTokenIssued         Action = "token_issued"
	ActionTokenRevoked        Action = "token_revoked"
	ActionReplayDetected      Action = "replay_detected"
	ActionDecisionRecorded    Action = "decision_recorded"
	ActionResolutionApplied   Action = "resolution_applied"
	ActionOutcomeRecorded     Action = "outcome_recorded"
	ActionScannerRegistered   Action = "scanner_registered"
	ActionRewardStateComputed Action = "reward_state_computed"
)

var actionCategories = map[Action]EventCategory{
	ActionDecisionRecorded:    CategoryCompliance,
	ActionResolutionApplied:   CategoryCompliance,
	ActionReplayDetected:      CategorySecurity,
	ActionTokenRevoked:        CategorySecurity,
	ActionScannerRegistered:   CategorySecurity,
	ActionTokenIssued:         CategoryOperations,
	ActionOutcomeRecorded:     CategoryOperations,
	ActionRewardStateComputed: CategoryOperations,
}

// CategoryFor returns the routing category for an action, defaulting to
// operations for unmapped actions.
func CategoryFor(action Action) EventCategory {
	if c, ok := actionCategories[action]; ok {
		return c
	}
	return CategoryOperations
}

// Event is one audit entry.
type Event struct {
	Category       EventCategory `json:"category"`
	Action         Action        `json:"action"`
	Timestamp      time.Time     `json:"timestamp"`
	UserID         id.UserID     `json:"user_id"`
	EventID        id.EventID    `json:"event_id,omitempty"`
	VerificationID string        `json:"verification_id,omitempty"`
	Decision       string        `json:"decision,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	RequestID      string        `json:"request_id,omitempty"`
}
