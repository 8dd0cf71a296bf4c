package models

// Address represents a postal address.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Person represents a registered person.
type Person struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	DateOfBirth   string     `json:"dateOfBirth"`
	Address       Address    `json:"address"`
	IsAdmin       bool       `json:"isAdmin"`
	IsActive      bool       `json:"isActive"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     Timestamp  `json:"createdAt"`
	UpdatedAt     Timestamp  `json:"updatedAt"`
	LastLoginAt   *Timestamp `json:"lastLoginAt,omitempty"`
}

// PersonCreateRequest is the request body for creating a person.
type PersonCreateRequest struct {
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone,omitempty" validate:"omitempty,max=20"`
	DateOfBirth string  `json:"dateOfBirth" validate:"required"`
	Address     Address `json:"address"`
	IsAdmin     bool    `json:"isAdmin,omitempty"`
}

// PersonUpdateRequest is the request body for updating a person.
// All fields are optional; only provided fields are updated.
type PersonUpdateRequest struct {
	FirstName   *string  `json:"firstName,omitempty"`
	LastName    *string  `json:"lastName,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	DateOfBirth *string  `json:"dateOfBirth,omitempty"`
	Address     *Address `json:"address,omitempty"`
	IsAdmin     *bool    `json:"isAdmin,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// PagedPeople represents a paginated list of people.
type PagedPeople struct {
	Items []Person          `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
