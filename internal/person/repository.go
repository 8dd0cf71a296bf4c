package person

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Repository errors.
var (
	ErrPersonNotFound = errors.New("person not found")
	ErrEmailTaken     = errors.New("email already registered")
)

// ListOptions controls pagination for List.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult holds a page of people and the cursor for the next page.
type ListResult struct {
	Items      []*Person
	NextCursor string
}

// Repository defines the interface for person data persistence.
type Repository interface {
	// Get retrieves a person by ID.
	Get(ctx context.Context, id string) (*Person, error)

	// GetByEmail retrieves a person by email address.
	GetByEmail(ctx context.Context, email string) (*Person, error)

	// List retrieves a page of people ordered by ID.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create creates a new person.
	Create(ctx context.Context, p *Person) error

	// Update updates an existing person.
	Update(ctx context.Context, p *Person) error

	// Delete deletes a person.
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu      sync.RWMutex
	people  map[string]*Person
	byEmail map[string]string // email -> person ID
}

// NewInMemoryRepository creates a new in-memory person repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		people:  make(map[string]*Person),
		byEmail: make(map[string]string),
	}
}

// Get retrieves a person by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.people[id]
	if !ok {
		return nil, ErrPersonNotFound
	}

	return copyPerson(p), nil
}

// GetByEmail retrieves a person by email address.
func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrPersonNotFound
	}

	p, ok := r.people[id]
	if !ok {
		return nil, ErrPersonNotFound
	}

	return copyPerson(p), nil
}

// List retrieves a page of people ordered by ID.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.people))
	for id := range r.people {
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
		result.Items = append(result.Items, copyPerson(r.people[id]))
	}

	return result, nil
}

// Create creates a new person.
func (r *InMemoryRepository) Create(_ context.Context, p *Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[p.Email]; taken {
		return ErrEmailTaken
	}

	r.people[p.ID] = copyPerson(p)
	r.byEmail[p.Email] = p.ID
	return nil
}

// Update updates an existing person.
func (r *InMemoryRepository) Update(_ context.Context, p *Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.people[p.ID]
	if !ok {
		return ErrPersonNotFound
	}

	if existing.Email != p.Email {
		if owner, taken := r.byEmail[p.Email]; taken && owner != p.ID {
			return ErrEmailTaken
		}
		delete(r.byEmail, existing.Email)
		r.byEmail[p.Email] = p.ID
	}

	r.people[p.ID] = copyPerson(p)
	return nil
}

// Delete deletes a person.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.people[id]
	if !ok {
		return ErrPersonNotFound
	}

	delete(r.byEmail, p.Email)
	delete(r.people, id)
	return nil
}

// copyPerson creates a deep copy of a person.
func copyPerson(p *Person) *Person {
	if p == nil {
		return nil
	}

	personCopy := *p
	if p.LastLoginAt != nil {
		val := *p.LastLoginAt
		personCopy.LastLoginAt = &val
	}
	return &personCopy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
