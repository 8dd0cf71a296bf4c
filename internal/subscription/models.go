// Package subscription manages project subscriptions for people.
package subscription

import "time"

// Status represents the status of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusInactive  Status = "inactive"
)

// ValidStatus reports whether s is a known subscription status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusPending, StatusCancelled, StatusInactive:
		return true
	}
	return false
}

// Blocking reports whether a subscription in this status prevents
// deletion of its person. Cancelled and inactive subscriptions do not.
func (s Status) Blocking() bool {
	return s == StatusActive || s == StatusPending
}

// Subscription links a person to a project.
type Subscription struct {
	// ID is the unique subscription identifier (format: sub_XXXX).
	ID string

	PersonID  string
	ProjectID string
	Status    Status

	// SubscriptionDate is the date the person subscribed (YYYY-MM-DD).
	SubscriptionDate string

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
