package models

// ProjectStatus represents the lifecycle status of a project.
type ProjectStatus string

const (
	ProjectStatusPending   ProjectStatus = "pending"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// Project represents a project people can subscribe to.
type Project struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description"`
	StartDate           string        `json:"startDate"`
	EndDate             string        `json:"endDate"`
	MaxParticipants     int           `json:"maxParticipants"`
	Status              ProjectStatus `json:"status"`
	Category            *string       `json:"category,omitempty"`
	Location            *string       `json:"location,omitempty"`
	Requirements        *string       `json:"requirements,omitempty"`
	RegistrationEndDate *string       `json:"registrationEndDate,omitempty"`
	IsEnabled           bool          `json:"isEnabled"`
	CreatedAt           Timestamp     `json:"createdAt"`
	UpdatedAt           Timestamp     `json:"updatedAt"`
}

// ProjectCreateRequest is the request body for creating a project.
type ProjectCreateRequest struct {
	Name                string         `json:"name" validate:"required,max=200"`
	Description         string         `json:"description" validate:"required,max=2000"`
	StartDate           string         `json:"startDate" validate:"required"`
	EndDate             string         `json:"endDate" validate:"required"`
	MaxParticipants     int            `json:"maxParticipants" validate:"required,gte=1,lte=1000"`
	Status              *ProjectStatus `json:"status,omitempty"`
	Category            *string        `json:"category,omitempty" validate:"omitempty,max=100"`
	Location            *string        `json:"location,omitempty" validate:"omitempty,max=200"`
	Requirements        *string        `json:"requirements,omitempty" validate:"omitempty,max=1000"`
	RegistrationEndDate *string        `json:"registrationEndDate,omitempty"`
	IsEnabled           *bool          `json:"isEnabled,omitempty"`
}

// ProjectUpdateRequest is the request body for updating a project.
type ProjectUpdateRequest struct {
	Name                *string        `json:"name,omitempty"`
	Description         *string        `json:"description,omitempty"`
	StartDate           *string        `json:"startDate,omitempty"`
	EndDate             *string        `json:"endDate,omitempty"`
	MaxParticipants     *int           `json:"maxParticipants,omitempty"`
	Status              *ProjectStatus `json:"status,omitempty"`
	Category            *string        `json:"category,omitempty"`
	Location            *string        `json:"location,omitempty"`
	Requirements        *string        `json:"requirements,omitempty"`
	RegistrationEndDate *string        `json:"registrationEndDate,omitempty"`
	IsEnabled           *bool          `json:"isEnabled,omitempty"`
}

// PagedProjects represents a paginated list of projects.
type PagedProjects struct {
	Items []Project         `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
