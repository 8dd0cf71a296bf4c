package subscription

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Repository errors.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrDuplicate            = errors.New("person already subscribed to project")
)

// ListOptions controls pagination for List.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult holds a page of subscriptions and the cursor for the next page.
type ListResult struct {
	Items      []*Subscription
	NextCursor string
}

// Repository defines the interface for subscription data persistence.
type Repository interface {
	// Get retrieves a subscription by ID.
	Get(ctx context.Context, id string) (*Subscription, error)

	// List retrieves a page of subscriptions ordered by ID.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// ListByPerson retrieves all subscriptions for a person.
	ListByPerson(ctx context.Context, personID string) ([]*Subscription, error)

	// Create creates a new subscription. Returns ErrDuplicate if the
	// person already has a subscription to the same project.
	Create(ctx context.Context, sub *Subscription) error

	// Update updates an existing subscription.
	Update(ctx context.Context, sub *Subscription) error

	// Delete deletes a subscription.
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	subs     map[string]*Subscription
	byPerson map[string]map[string]string // personID -> projectID -> subscription ID
}

// NewInMemoryRepository creates a new in-memory subscription repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		subs:     make(map[string]*Subscription),
		byPerson: make(map[string]map[string]string),
	}
}

// Get retrieves a subscription by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}

	return copySubscription(sub), nil
}

// List retrieves a page of subscriptions ordered by ID.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.subs))
	for id := range r.subs {
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
		result.Items = append(result.Items, copySubscription(r.subs[id]))
	}

	return result, nil
}

// ListByPerson retrieves all subscriptions for a person.
func (r *InMemoryRepository) ListByPerson(_ context.Context, personID string) ([]*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byProject := r.byPerson[personID]
	result := make([]*Subscription, 0, len(byProject))
	for _, id := range byProject {
		result = append(result, copySubscription(r.subs[id]))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Create creates a new subscription.
func (r *InMemoryRepository) Create(_ context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byProject, ok := r.byPerson[sub.PersonID]
	if !ok {
		byProject = make(map[string]string)
		r.byPerson[sub.PersonID] = byProject
	}
	if _, exists := byProject[sub.ProjectID]; exists {
		return ErrDuplicate
	}

	r.subs[sub.ID] = copySubscription(sub)
	byProject[sub.ProjectID] = sub.ID
	return nil
}

// Update updates an existing subscription.
func (r *InMemoryRepository) Update(_ context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub.ID]; !ok {
		return ErrSubscriptionNotFound
	}

	r.subs[sub.ID] = copySubscription(sub)
	return nil
}

// Delete deletes a subscription.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[id]
	if !ok {
		return ErrSubscriptionNotFound
	}

	if byProject, ok := r.byPerson[sub.PersonID]; ok {
		delete(byProject, sub.ProjectID)
		if len(byProject) == 0 {
			delete(r.byPerson, sub.PersonID)
		}
	}
	delete(r.subs, id)
	return nil
}

// copySubscription creates a copy of a subscription.
func copySubscription(sub *Subscription) *Subscription {
	if sub == nil {
		return nil
	}
	subCopy := *sub
	return &subCopy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
