package project

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Repository errors.
var (
	ErrProjectNotFound = errors.New("project not found")
)

// ListOptions controls pagination for List.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult holds a page of projects and the cursor for the next page.
type ListResult struct {
	Items      []*Project
	NextCursor string
}

// Repository defines the interface for project data persistence.
type Repository interface {
	// Get retrieves a project by ID.
	Get(ctx context.Context, id string) (*Project, error)

	// List retrieves a page of projects ordered by ID.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create creates a new project.
	Create(ctx context.Context, p *Project) error

	// Update updates an existing project.
	Update(ctx context.Context, p *Project) error

	// Delete deletes a project.
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewInMemoryRepository creates a new in-memory project repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		projects: make(map[string]*Project),
	}
}

// Get retrieves a project by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}

	return copyProject(p), nil
}

// List retrieves a page of projects ordered by ID.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.projects))
	for id := range r.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{}
	for _, id := range ids {
		if opts.Cursor != "" && id <= opts.Cursor {
			continue
		}
		if len(result.Items) == limit {
			result.NextCursor = result.Items[len(result.Items)-1].ID
			break
		}
		result.Items = append(result.Items, copyProject(r.projects[id]))
	}

	return result, nil
}

// Create creates a new project.
func (r *InMemoryRepository) Create(_ context.Context, p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.projects[p.ID] = copyProject(p)
	return nil
}

// Update updates an existing project.
func (r *InMemoryRepository) Update(_ context.Context, p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[p.ID]; !ok {
		return ErrProjectNotFound
	}

	r.projects[p.ID] = copyProject(p)
	return nil
}

// Delete deletes a project.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return ErrProjectNotFound
	}

	delete(r.projects, id)
	return nil
}

// copyProject creates a deep copy of a project.
func copyProject(p *Project) *Project {
	if p == nil {
		return nil
	}

	projectCopy := *p
	projectCopy.Category = copyStringPtr(p.Category)
	projectCopy.Location = copyStringPtr(p.Location)
	projectCopy.Requirements = copyStringPtr(p.Requirements)
	projectCopy.RegistrationEndDate = copyStringPtr(p.RegistrationEndDate)
	return &projectCopy
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	val := *s
	return &val
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
