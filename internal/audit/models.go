// Package audit provides an append-only trail of security-relevant events.
package audit

import "time"

// Event types recorded by the deletion workflow.
const (
	EventDeletionInitiated = "person.deletion.initiated"
	EventDeletionBlocked   = "person.deletion.blocked"
	EventDeletionConfirmed = "person.deletion.confirmed"
	EventDeletionDenied    = "person.deletion.denied"
	EventDeletionFailed    = "person.deletion.failed"
)

// Outcome values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Severity values.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Event is a single audit trail entry.
type Event struct {
	// ID is the unique event identifier (format: evt_XXXX).
	ID string `json:"id"`

	// Type is the event type, e.g. "person.deletion.confirmed".
	Type string `json:"type"`

	// PersonID is the subject of the event.
	PersonID string `json:"personId"`

	// ActorID is the authenticated actor who triggered the event.
	ActorID string `json:"actorId"`

	Outcome  string `json:"outcome"`
	Severity string `json:"severity"`

	// IP and UserAgent are opaque request metadata passed through from
	// the HTTP layer; either may be empty.
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`

	// Details carries event-specific context such as the deletion
	// reason or the number of blocking records.
	Details map[string]any `json:"details,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
