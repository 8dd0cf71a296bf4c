// Package person provides person registration and profile management.
package person

import "time"

// Address represents a person's postal address.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Person represents a registered person.
type Person struct {
	// ID is the unique person identifier (format: per_XXXX).
	ID string

	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth string
	Address     Address

	// IsAdmin grants access to administrative operations.
	IsAdmin bool

	// IsActive is false for deactivated accounts.
	IsActive bool

	// EmailVerified is true once the person confirmed their email address.
	EmailVerified bool

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// FullName returns the person's display name.
func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}
