package project_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/peopleregistry/peopleregistry/internal/api/models"
	"github.com/peopleregistry/peopleregistry/internal/project"
)

func validCreateRequest() *models.ProjectCreateRequest {
	return &models.ProjectCreateRequest{
		Name:            "Community Garden",
		Description:     "Build a shared vegetable garden",
		StartDate:       "2026-03-01",
		EndDate:         "2026-09-30",
		MaxParticipants: 25,
	}
}

func TestService_Create(t *testing.T) {
	repo := project.NewInMemoryRepository()
	service := project.NewService(repo)
	ctx := context.Background()

	result, err := service.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	if !strings.HasPrefix(result.ID, "prj_") {
		t.Errorf("expected project ID to start with 'prj_', got %q", result.ID)
	}
	if result.Status != models.ProjectStatusPending {
		t.Errorf("expected default status pending, got %q", result.Status)
	}
	if !result.IsEnabled {
		t.Error("expected project to be enabled by default")
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	repo := project.NewInMemoryRepository()
	service := project.NewService(repo)
	ctx := context.Background()

	badStatus := models.ProjectStatus("archived")

	tests := []struct {
		name      string
		mutate    func(*models.ProjectCreateRequest)
		wantField string
	}{
		{
			name:      "empty name",
			mutate:    func(r *models.ProjectCreateRequest) { r.Name = "" },
			wantField: "name",
		},
		{
			name:      "name too long",
			mutate:    func(r *models.ProjectCreateRequest) { r.Name = strings.Repeat("a", 201) },
			wantField: "name",
		},
		{
			name:      "empty description",
			mutate:    func(r *models.ProjectCreateRequest) { r.Description = "" },
			wantField: "description",
		},
		{
			name:      "end before start",
			mutate:    func(r *models.ProjectCreateRequest) { r.EndDate = "2026-01-01" },
			wantField: "endDate",
		},
		{
			name:      "invalid start date format",
			mutate:    func(r *models.ProjectCreateRequest) { r.StartDate = "01-03-2026" },
			wantField: "startDate",
		},
		{
			name:      "zero participants",
			mutate:    func(r *models.ProjectCreateRequest) { r.MaxParticipants = 0 },
			wantField: "maxParticipants",
		},
		{
			name:      "too many participants",
			mutate:    func(r *models.ProjectCreateRequest) { r.MaxParticipants = 1001 },
			wantField: "maxParticipants",
		},
		{
			name:      "unknown status",
			mutate:    func(r *models.ProjectCreateRequest) { r.Status = &badStatus },
			wantField: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateRequest()
			tt.mutate(input)

			_, err := service.Create(ctx, input)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var valErr *project.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}

			found := false
			for _, fe := range valErr.Errors {
				if fe.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %+v", tt.wantField, valErr.Errors)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	repo := project.NewInMemoryRepository()
	service := project.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	active := models.ProjectStatusActive
	location := "Amsterdam Noord"
	updated, err := service.Update(ctx, created.ID, &models.ProjectUpdateRequest{
		Status:   &active,
		Location: &location,
	})
	if err != nil {
		t.Fatalf("failed to update project: %v", err)
	}

	if updated.Status != models.ProjectStatusActive {
		t.Errorf("expected status active, got %q", updated.Status)
	}
	if updated.Location == nil || *updated.Location != location {
		t.Errorf("expected location %q, got %v", location, updated.Location)
	}
	if updated.Name != created.Name {
		t.Errorf("expected name to be unchanged, got %q", updated.Name)
	}
}

func TestService_Update_DateOrdering(t *testing.T) {
	repo := project.NewInMemoryRepository()
	service := project.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	// Moving only the end date before the existing start date must fail.
	badEnd := "2026-01-15"
	_, err = service.Update(ctx, created.ID, &models.ProjectUpdateRequest{EndDate: &badEnd})

	var valErr *project.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	repo := project.NewInMemoryRepository()
	service := project.NewService(repo)
	ctx := context.Background()

	_, err := service.Get(ctx, "prj_doesnotexist")
	if !errors.Is(err, project.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	repo := project.NewInMemoryRepository()
	service := project.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("failed to delete project: %v", err)
	}

	_, err = service.Get(ctx, created.ID)
	if !errors.Is(err, project.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound after delete, got %v", err)
	}
}

func TestService_List(t *testing.T) {
	repo := project.NewInMemoryRepository()
	service := project.NewService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := service.Create(ctx, validCreateRequest()); err != nil {
			t.Fatalf("failed to create project: %v", err)
		}
	}

	page, err := service.List(ctx, 2, "")
	if err != nil {
		t.Fatalf("failed to list projects: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Meta.NextCursor == nil {
		t.Fatal("expected next cursor")
	}

	rest, err := service.List(ctx, 2, *page.Meta.NextCursor)
	if err != nil {
		t.Fatalf("failed to list projects: %v", err)
	}
	if len(rest.Items) != 1 {
		t.Fatalf("expected 1 item on second page, got %d", len(rest.Items))
	}
}
