package subscription_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
	"github.com/peopleregistry/peopleregistry/internal/person"
	"github.com/peopleregistry/peopleregistry/internal/project"
	"github.com/peopleregistry/peopleregistry/internal/subscription"
)

type fixture struct {
	service  *subscription.Service
	personID string
	project  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	people := person.NewInMemoryRepository()
	projects := project.NewInMemoryRepository()
	subs := subscription.NewInMemoryRepository()

	now := time.Now()
	p := &person.Person{
		ID:        "per_test0000000000000000",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := people.Create(ctx, p); err != nil {
		t.Fatalf("failed to seed person: %v", err)
	}

	prj := &project.Project{
		ID:              "prj_test0000000000000000",
		Name:            "Community Garden",
		Description:     "Build a shared vegetable garden",
		StartDate:       "2026-03-01",
		EndDate:         "2026-09-30",
		MaxParticipants: 25,
		Status:          project.StatusActive,
		IsEnabled:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := projects.Create(ctx, prj); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}

	return &fixture{
		service:  subscription.NewService(subs, people, projects),
		personID: p.ID,
		project:  prj.ID,
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Create(ctx, &models.SubscriptionCreateRequest{
		PersonID:  f.personID,
		ProjectID: f.project,
	})
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	if !strings.HasPrefix(result.ID, "sub_") {
		t.Errorf("expected subscription ID to start with 'sub_', got %q", result.ID)
	}
	if result.Status != models.SubscriptionStatusPending {
		t.Errorf("expected default status pending, got %q", result.Status)
	}
	if !result.IsActive {
		t.Error("expected pending subscription to be active")
	}
	if result.SubscriptionDate == "" {
		t.Error("expected subscription date to be set")
	}
}

func TestService_Create_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, &models.SubscriptionCreateRequest{
		PersonID:  "per_doesnotexist",
		ProjectID: f.project,
	})
	if !errors.Is(err, person.ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound, got %v", err)
	}

	_, err = f.service.Create(ctx, &models.SubscriptionCreateRequest{
		PersonID:  f.personID,
		ProjectID: "prj_doesnotexist",
	})
	if !errors.Is(err, project.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestService_Create_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := &models.SubscriptionCreateRequest{
		PersonID:  f.personID,
		ProjectID: f.project,
	}
	if _, err := f.service.Create(ctx, input); err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	_, err := f.service.Create(ctx, input)
	if !errors.Is(err, subscription.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, &models.SubscriptionCreateRequest{})

	var valErr *subscription.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if len(valErr.Errors) != 2 {
		t.Errorf("expected errors on personId and projectId, got %+v", valErr.Errors)
	}
}

func TestService_Update_StatusDrivesActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &models.SubscriptionCreateRequest{
		PersonID:  f.personID,
		ProjectID: f.project,
	})
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	cancelled := models.SubscriptionStatusCancelled
	updated, err := f.service.Update(ctx, created.ID, &models.SubscriptionUpdateRequest{Status: &cancelled})
	if err != nil {
		t.Fatalf("failed to update subscription: %v", err)
	}

	if updated.Status != models.SubscriptionStatusCancelled {
		t.Errorf("expected status cancelled, got %q", updated.Status)
	}
	if updated.IsActive {
		t.Error("expected cancelled subscription to be inactive")
	}
}

func TestService_ListForPerson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Create(ctx, &models.SubscriptionCreateRequest{
		PersonID:  f.personID,
		ProjectID: f.project,
	}); err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	subs, err := f.service.ListForPerson(ctx, f.personID)
	if err != nil {
		t.Fatalf("failed to list subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
	if subs[0].PersonID != f.personID {
		t.Errorf("expected person ID %q, got %q", f.personID, subs[0].PersonID)
	}

	_, err = f.service.ListForPerson(ctx, "per_doesnotexist")
	if !errors.Is(err, person.ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, &models.SubscriptionCreateRequest{
		PersonID:  f.personID,
		ProjectID: f.project,
	})
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}

	if err := f.service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("failed to delete subscription: %v", err)
	}

	// Deleting frees the person/project pair for a new subscription.
	if _, err := f.service.Create(ctx, &models.SubscriptionCreateRequest{
		PersonID:  f.personID,
		ProjectID: f.project,
	}); err != nil {
		t.Errorf("expected re-subscription after delete to succeed, got %v", err)
	}
}
