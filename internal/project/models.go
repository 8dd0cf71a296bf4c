// Package project provides project management for the registry.
package project

import "time"

// Status represents the lifecycle status of a project.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is a known project status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Project represents a project people can subscribe to.
type Project struct {
	// ID is the unique project identifier (format: prj_XXXX).
	ID string

	Name            string
	Description     string
	StartDate       string
	EndDate         string
	MaxParticipants int
	Status          Status

	Category            *string
	Location            *string
	Requirements        *string
	RegistrationEndDate *string

	// IsEnabled is false for projects hidden from registration.
	IsEnabled bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
