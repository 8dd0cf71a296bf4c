package person

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
)

// Validation constants.
const (
	MaxNameLength  = 100
	MaxPhoneLength = 20
)

// emailRegex validates a basic email shape; deliverability is not checked here.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// dateOfBirthRegex validates YYYY-MM-DD format.
var dateOfBirthRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Service provides person operations.
type Service struct {
	repo Repository
}

// NewService creates a new person service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves a page of people.
func (s *Service) List(ctx context.Context, limit int, cursor string) (*models.PagedPeople, error) {
	result, err := s.repo.List(ctx, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}

	items := make([]models.Person, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, s.toAPIPerson(p))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedPeople{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a person by ID.
func (s *Service) Get(ctx context.Context, personID string) (*models.Person, error) {
	p, err := s.repo.Get(ctx, personID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIPerson(p)
	return &result, nil
}

// Create registers a new person.
func (s *Service) Create(ctx context.Context, input *models.PersonCreateRequest) (*models.Person, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	p := &Person{
		ID:          "per_" + uuid.New().String()[:22],
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		DateOfBirth: input.DateOfBirth,
		Address: Address{
			Street:     input.Address.Street,
			City:       input.Address.City,
			State:      input.Address.State,
			PostalCode: input.Address.PostalCode,
			Country:    input.Address.Country,
		},
		IsAdmin:   input.IsAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	result := s.toAPIPerson(p)
	return &result, nil
}

// Update updates an existing person.
func (s *Service) Update(ctx context.Context, personID string, input *models.PersonUpdateRequest) (*models.Person, error) {
	p, err := s.repo.Get(ctx, personID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	// Apply updates
	if input.FirstName != nil {
		p.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		p.LastName = *input.LastName
	}
	if input.Email != nil {
		p.Email = *input.Email
	}
	if input.Phone != nil {
		p.Phone = *input.Phone
	}
	if input.DateOfBirth != nil {
		p.DateOfBirth = *input.DateOfBirth
	}
	if input.Address != nil {
		p.Address = Address{
			Street:     input.Address.Street,
			City:       input.Address.City,
			State:      input.Address.State,
			PostalCode: input.Address.PostalCode,
			Country:    input.Address.Country,
		}
	}
	if input.IsAdmin != nil {
		p.IsAdmin = *input.IsAdmin
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	result := s.toAPIPerson(p)
	return &result, nil
}

// RecordLogin stamps the last login time on the person registered
// under the given email. A login without a matching registry record
// is not an error: credentials can exist for operators who are not
// registry people.
func (s *Service) RecordLogin(ctx context.Context, email string) error {
	p, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			return nil
		}
		return err
	}

	now := time.Now()
	p.LastLoginAt = &now
	return s.repo.Update(ctx, p)
}

// validateCreateInput validates the create person input.
func (s *Service) validateCreateInput(input *models.PersonCreateRequest) []models.FieldError {
	var errs []models.FieldError

	errs = append(errs, s.validateName(input.FirstName, "firstName", true)...)
	errs = append(errs, s.validateName(input.LastName, "lastName", true)...)

	// Validate email
	if input.Email == "" {
		errs = append(errs, models.FieldError{Field: "email", Message: "is required"})
	} else if !emailRegex.MatchString(input.Email) {
		errs = append(errs, models.FieldError{Field: "email", Message: "must be a valid email address"})
	}

	// Validate phone (optional)
	if input.Phone != "" && len(input.Phone) > MaxPhoneLength {
		errs = append(errs, models.FieldError{Field: "phone", Message: "must be at most 20 characters"})
	}

	// Validate date of birth (optional)
	if input.DateOfBirth != "" {
		errs = append(errs, s.validateDateOfBirth(input.DateOfBirth)...)
	}

	return errs
}

// validateUpdateInput validates the update person input.
func (s *Service) validateUpdateInput(input *models.PersonUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.FirstName != nil {
		errs = append(errs, s.validateName(*input.FirstName, "firstName", false)...)
	}
	if input.LastName != nil {
		errs = append(errs, s.validateName(*input.LastName, "lastName", false)...)
	}

	// Validate email (optional)
	if input.Email != nil {
		if *input.Email == "" {
			errs = append(errs, models.FieldError{Field: "email", Message: "cannot be empty"})
		} else if !emailRegex.MatchString(*input.Email) {
			errs = append(errs, models.FieldError{Field: "email", Message: "must be a valid email address"})
		}
	}

	// Validate phone (optional)
	if input.Phone != nil && len(*input.Phone) > MaxPhoneLength {
		errs = append(errs, models.FieldError{Field: "phone", Message: "must be at most 20 characters"})
	}

	// Validate date of birth (optional)
	if input.DateOfBirth != nil && *input.DateOfBirth != "" {
		errs = append(errs, s.validateDateOfBirth(*input.DateOfBirth)...)
	}

	return errs
}

// validateName validates a first or last name field.
func (s *Service) validateName(name, field string, required bool) []models.FieldError {
	if name == "" {
		if required {
			return []models.FieldError{{Field: field, Message: "is required"}}
		}
		return []models.FieldError{{Field: field, Message: "cannot be empty"}}
	}
	if len(name) > MaxNameLength {
		return []models.FieldError{{Field: field, Message: "must be at most 100 characters"}}
	}
	return nil
}

// validateDateOfBirth validates a date of birth value.
func (s *Service) validateDateOfBirth(dob string) []models.FieldError {
	if !dateOfBirthRegex.MatchString(dob) {
		return []models.FieldError{{Field: "dateOfBirth", Message: "must be in YYYY-MM-DD format"}}
	}
	if _, err := time.Parse("2006-01-02", dob); err != nil {
		return []models.FieldError{{Field: "dateOfBirth", Message: "must be a valid calendar date"}}
	}
	return nil
}

// toAPIPerson converts a domain Person to an API Person.
func (s *Service) toAPIPerson(p *Person) models.Person {
	result := models.Person{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Phone:       p.Phone,
		DateOfBirth: p.DateOfBirth,
		Address: models.Address{
			Street:     p.Address.Street,
			City:       p.Address.City,
			State:      p.Address.State,
			PostalCode: p.Address.PostalCode,
			Country:    p.Address.Country,
		},
		IsAdmin:       p.IsAdmin,
		IsActive:      p.IsActive,
		EmailVerified: p.EmailVerified,
		CreatedAt:     models.Timestamp(p.CreatedAt),
		UpdatedAt:     models.Timestamp(p.UpdatedAt),
	}
	if p.LastLoginAt != nil {
		ts := models.Timestamp(*p.LastLoginAt)
		result.LastLoginAt = &ts
	}
	return result
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
