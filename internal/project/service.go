package project

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
)

// Validation constants.
const (
	MaxNameLength         = 200
	MaxDescriptionLength  = 2000
	MaxCategoryLength     = 100
	MaxLocationLength     = 200
	MaxRequirementsLength = 1000
	MaxParticipantsLimit  = 1000
)

// dateRegex validates YYYY-MM-DD format.
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Service provides project operations.
type Service struct {
	repo Repository
}

// NewService creates a new project service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves a page of projects.
func (s *Service) List(ctx context.Context, limit int, cursor string) (*models.PagedProjects, error) {
	result, err := s.repo.List(ctx, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}

	items := make([]models.Project, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, s.toAPIProject(p))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedProjects{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a project by ID.
func (s *Service) Get(ctx context.Context, projectID string) (*models.Project, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIProject(p)
	return &result, nil
}

// Create creates a new project.
func (s *Service) Create(ctx context.Context, input *models.ProjectCreateRequest) (*models.Project, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	status := StatusPending
	if input.Status != nil {
		status = Status(*input.Status)
	}

	enabled := true
	if input.IsEnabled != nil {
		enabled = *input.IsEnabled
	}

	now := time.Now()
	p := &Project{
		ID:                  "prj_" + uuid.New().String()[:22],
		Name:                input.Name,
		Description:         input.Description,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		MaxParticipants:     input.MaxParticipants,
		Status:              status,
		Category:            input.Category,
		Location:            input.Location,
		Requirements:        input.Requirements,
		RegistrationEndDate: input.RegistrationEndDate,
		IsEnabled:           enabled,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	result := s.toAPIProject(p)
	return &result, nil
}

// Update updates an existing project.
func (s *Service) Update(ctx context.Context, projectID string, input *models.ProjectUpdateRequest) (*models.Project, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(p, input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	// Apply updates
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.StartDate != nil {
		p.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		p.EndDate = *input.EndDate
	}
	if input.MaxParticipants != nil {
		p.MaxParticipants = *input.MaxParticipants
	}
	if input.Status != nil {
		p.Status = Status(*input.Status)
	}
	if input.Category != nil {
		p.Category = input.Category
	}
	if input.Location != nil {
		p.Location = input.Location
	}
	if input.Requirements != nil {
		p.Requirements = input.Requirements
	}
	if input.RegistrationEndDate != nil {
		p.RegistrationEndDate = input.RegistrationEndDate
	}
	if input.IsEnabled != nil {
		p.IsEnabled = *input.IsEnabled
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	result := s.toAPIProject(p)
	return &result, nil
}

// Delete deletes a project.
func (s *Service) Delete(ctx context.Context, projectID string) error {
	return s.repo.Delete(ctx, projectID)
}

// validateCreateInput validates the create project input.
func (s *Service) validateCreateInput(input *models.ProjectCreateRequest) []models.FieldError {
	var errs []models.FieldError

	// Validate name
	if input.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	} else if len(input.Name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 200 characters"})
	}

	// Validate description
	if input.Description == "" {
		errs = append(errs, models.FieldError{Field: "description", Message: "is required"})
	} else if len(input.Description) > MaxDescriptionLength {
		errs = append(errs, models.FieldError{Field: "description", Message: "must be at most 2000 characters"})
	}

	// Validate dates
	errs = append(errs, s.validateDate(input.StartDate, "startDate", true)...)
	errs = append(errs, s.validateDate(input.EndDate, "endDate", true)...)
	if dateRegex.MatchString(input.StartDate) && dateRegex.MatchString(input.EndDate) && input.EndDate < input.StartDate {
		errs = append(errs, models.FieldError{Field: "endDate", Message: "must not be before startDate"})
	}
	if input.RegistrationEndDate != nil {
		errs = append(errs, s.validateDate(*input.RegistrationEndDate, "registrationEndDate", false)...)
	}

	// Validate participant limit
	if input.MaxParticipants < 1 || input.MaxParticipants > MaxParticipantsLimit {
		errs = append(errs, models.FieldError{Field: "maxParticipants", Message: "must be between 1 and 1000"})
	}

	// Validate status (optional)
	if input.Status != nil && !ValidStatus(Status(*input.Status)) {
		errs = append(errs, models.FieldError{Field: "status", Message: "must be one of pending, active, completed, cancelled"})
	}

	// Validate optional text fields
	if input.Category != nil && len(*input.Category) > MaxCategoryLength {
		errs = append(errs, models.FieldError{Field: "category", Message: "must be at most 100 characters"})
	}
	if input.Location != nil && len(*input.Location) > MaxLocationLength {
		errs = append(errs, models.FieldError{Field: "location", Message: "must be at most 200 characters"})
	}
	if input.Requirements != nil && len(*input.Requirements) > MaxRequirementsLength {
		errs = append(errs, models.FieldError{Field: "requirements", Message: "must be at most 1000 characters"})
	}

	return errs
}

// validateUpdateInput validates the update project input against the current state.
func (s *Service) validateUpdateInput(current *Project, input *models.ProjectUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Name != nil {
		if *input.Name == "" {
			errs = append(errs, models.FieldError{Field: "name", Message: "cannot be empty"})
		} else if len(*input.Name) > MaxNameLength {
			errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 200 characters"})
		}
	}

	if input.Description != nil {
		if *input.Description == "" {
			errs = append(errs, models.FieldError{Field: "description", Message: "cannot be empty"})
		} else if len(*input.Description) > MaxDescriptionLength {
			errs = append(errs, models.FieldError{Field: "description", Message: "must be at most 2000 characters"})
		}
	}

	if input.StartDate != nil {
		errs = append(errs, s.validateDate(*input.StartDate, "startDate", false)...)
	}
	if input.EndDate != nil {
		errs = append(errs, s.validateDate(*input.EndDate, "endDate", false)...)
	}

	// Ordering check uses the effective values after the update.
	start := current.StartDate
	if input.StartDate != nil {
		start = *input.StartDate
	}
	end := current.EndDate
	if input.EndDate != nil {
		end = *input.EndDate
	}
	if dateRegex.MatchString(start) && dateRegex.MatchString(end) && end < start {
		errs = append(errs, models.FieldError{Field: "endDate", Message: "must not be before startDate"})
	}

	if input.RegistrationEndDate != nil {
		errs = append(errs, s.validateDate(*input.RegistrationEndDate, "registrationEndDate", false)...)
	}

	if input.MaxParticipants != nil && (*input.MaxParticipants < 1 || *input.MaxParticipants > MaxParticipantsLimit) {
		errs = append(errs, models.FieldError{Field: "maxParticipants", Message: "must be between 1 and 1000"})
	}

	if input.Status != nil && !ValidStatus(Status(*input.Status)) {
		errs = append(errs, models.FieldError{Field: "status", Message: "must be one of pending, active, completed, cancelled"})
	}

	if input.Category != nil && len(*input.Category) > MaxCategoryLength {
		errs = append(errs, models.FieldError{Field: "category", Message: "must be at most 100 characters"})
	}
	if input.Location != nil && len(*input.Location) > MaxLocationLength {
		errs = append(errs, models.FieldError{Field: "location", Message: "must be at most 200 characters"})
	}
	if input.Requirements != nil && len(*input.Requirements) > MaxRequirementsLength {
		errs = append(errs, models.FieldError{Field: "requirements", Message: "must be at most 1000 characters"})
	}

	return errs
}

// validateDate validates a YYYY-MM-DD date field.
func (s *Service) validateDate(value, field string, required bool) []models.FieldError {
	if value == "" {
		if required {
			return []models.FieldError{{Field: field, Message: "is required"}}
		}
		return []models.FieldError{{Field: field, Message: "cannot be empty"}}
	}
	if !dateRegex.MatchString(value) {
		return []models.FieldError{{Field: field, Message: "must be in YYYY-MM-DD format"}}
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return []models.FieldError{{Field: field, Message: "must be a valid calendar date"}}
	}
	return nil
}

// toAPIProject converts a domain Project to an API Project.
func (s *Service) toAPIProject(p *Project) models.Project {
	return models.Project{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		MaxParticipants:     p.MaxParticipants,
		Status:              models.ProjectStatus(p.Status),
		Category:            p.Category,
		Location:            p.Location,
		Requirements:        p.Requirements,
		RegistrationEndDate: p.RegistrationEndDate,
		IsEnabled:           p.IsEnabled,
		CreatedAt:           models.Timestamp(p.CreatedAt),
		UpdatedAt:           models.Timestamp(p.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
