package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
	"github.com/peopleregistry/peopleregistry/internal/person"
	"github.com/peopleregistry/peopleregistry/internal/project"
)

// PersonDirectory resolves people referenced by subscriptions.
type PersonDirectory interface {
	Get(ctx context.Context, id string) (*person.Person, error)
}

// ProjectDirectory resolves projects referenced by subscriptions.
type ProjectDirectory interface {
	Get(ctx context.Context, id string) (*project.Project, error)
}

// Service provides subscription operations.
type Service struct {
	repo     Repository
	people   PersonDirectory
	projects ProjectDirectory
}

// NewService creates a new subscription service.
func NewService(repo Repository, people PersonDirectory, projects ProjectDirectory) *Service {
	return &Service{repo: repo, people: people, projects: projects}
}

// List retrieves a page of subscriptions.
func (s *Service) List(ctx context.Context, limit int, cursor string) (*models.PagedSubscriptions, error) {
	result, err := s.repo.List(ctx, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}

	items := make([]models.Subscription, 0, len(result.Items))
	for _, sub := range result.Items {
		items = append(items, s.toAPISubscription(sub))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedSubscriptions{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a subscription by ID.
func (s *Service) Get(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	sub, err := s.repo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	result := s.toAPISubscription(sub)
	return &result, nil
}

// ListForPerson retrieves all subscriptions belonging to a person.
func (s *Service) ListForPerson(ctx context.Context, personID string) ([]models.Subscription, error) {
	if _, err := s.people.Get(ctx, personID); err != nil {
		return nil, err
	}

	subs, err := s.repo.ListByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	items := make([]models.Subscription, 0, len(subs))
	for _, sub := range subs {
		items = append(items, s.toAPISubscription(sub))
	}
	return items, nil
}

// Create subscribes a person to a project. Both references are resolved
// before the subscription is stored.
func (s *Service) Create(ctx context.Context, input *models.SubscriptionCreateRequest) (*models.Subscription, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if _, err := s.people.Get(ctx, input.PersonID); err != nil {
		return nil, err
	}
	if _, err := s.projects.Get(ctx, input.ProjectID); err != nil {
		return nil, err
	}

	status := StatusPending
	if input.Status != nil {
		status = Status(*input.Status)
	}

	now := time.Now()
	sub := &Subscription{
		ID:               "sub_" + uuid.New().String()[:22],
		PersonID:         input.PersonID,
		ProjectID:        input.ProjectID,
		Status:           status,
		SubscriptionDate: now.Format("2006-01-02"),
		IsActive:         status.Blocking(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	result := s.toAPISubscription(sub)
	return &result, nil
}

// Update updates a subscription's status.
func (s *Service) Update(ctx context.Context, subscriptionID string, input *models.SubscriptionUpdateRequest) (*models.Subscription, error) {
	sub, err := s.repo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !ValidStatus(Status(*input.Status)) {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "status", Message: "must be one of active, pending, cancelled, inactive"},
		}}
	}

	if input.Status != nil {
		sub.Status = Status(*input.Status)
		sub.IsActive = sub.Status.Blocking()
	}
	if input.IsActive != nil {
		sub.IsActive = *input.IsActive
	}
	sub.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	result := s.toAPISubscription(sub)
	return &result, nil
}

// Delete deletes a subscription.
func (s *Service) Delete(ctx context.Context, subscriptionID string) error {
	return s.repo.Delete(ctx, subscriptionID)
}

// validateCreateInput validates the create subscription input.
func (s *Service) validateCreateInput(input *models.SubscriptionCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.PersonID == "" {
		errs = append(errs, models.FieldError{Field: "personId", Message: "is required"})
	}
	if input.ProjectID == "" {
		errs = append(errs, models.FieldError{Field: "projectId", Message: "is required"})
	}
	if input.Status != nil && !ValidStatus(Status(*input.Status)) {
		errs = append(errs, models.FieldError{Field: "status", Message: "must be one of active, pending, cancelled, inactive"})
	}

	return errs
}

// toAPISubscription converts a domain Subscription to an API Subscription.
func (s *Service) toAPISubscription(sub *Subscription) models.Subscription {
	return models.Subscription{
		ID:               sub.ID,
		PersonID:         sub.PersonID,
		ProjectID:        sub.ProjectID,
		Status:           models.SubscriptionStatus(sub.Status),
		SubscriptionDate: sub.SubscriptionDate,
		IsActive:         sub.IsActive,
		CreatedAt:        models.Timestamp(sub.CreatedAt),
		UpdatedAt:        models.Timestamp(sub.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
