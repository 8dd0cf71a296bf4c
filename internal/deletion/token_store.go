package deletion

import (
	"context"
	"sync"
	"time"
)

// TokenStore holds pending deletion tokens. Implementations must
// guarantee that Consume is atomic: of any number of concurrent
// Consume calls for the same token, exactly one succeeds.
type TokenStore interface {
	// Put stores the token, replacing any live token for the same
	// person. At most one unconsumed, unexpired token exists per
	// person at a time.
	Put(ctx context.Context, tok *Token) error

	// GetByToken retrieves a token by its value. Expired or consumed
	// tokens are treated as absent and return ErrTokenNotFound.
	GetByToken(ctx context.Context, value string) (*Token, error)

	// FindByValue retrieves a token by its value regardless of
	// consumed or expired state. ErrTokenNotFound means no record
	// exists at all.
	FindByValue(ctx context.Context, value string) (*Token, error)

	// Consume atomically marks the token consumed. It reports false
	// if the token is absent, expired, or already consumed.
	Consume(ctx context.Context, value string) (bool, error)

	// Release un-consumes a token after a failed delete so the
	// client can retry before expiry.
	Release(ctx context.Context, value string) error

	// Invalidate removes any live token for the person.
	Invalidate(ctx context.Context, personID string) error

	// SweepExpired removes tokens past their expiry and returns the
	// number removed. Expiry is enforced at read time regardless;
	// sweeping only reclaims storage.
	SweepExpired(ctx context.Context) (int, error)
}

// InMemoryTokenStore is an in-memory implementation of TokenStore.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryTokenStore struct {
	mu       sync.Mutex
	byValue  map[string]*Token
	byPerson map[string]string // personID -> token value
}

// NewInMemoryTokenStore creates a new in-memory token store.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{
		byValue:  make(map[string]*Token),
		byPerson: make(map[string]string),
	}
}

// Put stores the token, replacing any live token for the same person.
func (s *InMemoryTokenStore) Put(_ context.Context, tok *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byPerson[tok.PersonID]; ok {
		delete(s.byValue, prev)
	}

	stored := *tok
	s.byValue[tok.Value] = &stored
	s.byPerson[tok.PersonID] = tok.Value
	return nil
}

// GetByToken retrieves a live token by its value.
func (s *InMemoryTokenStore) GetByToken(_ context.Context, value string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.byValue[value]
	if !ok || tok.Consumed || tok.Expired(time.Now()) {
		return nil, ErrTokenNotFound
	}

	result := *tok
	return &result, nil
}

// FindByValue retrieves a token record whether or not it has been
// consumed or has expired.
func (s *InMemoryTokenStore) FindByValue(_ context.Context, value string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.byValue[value]
	if !ok {
		return nil, ErrTokenNotFound
	}

	result := *tok
	return &result, nil
}

// Consume atomically marks the token consumed.
func (s *InMemoryTokenStore) Consume(_ context.Context, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.byValue[value]
	if !ok || tok.Consumed || tok.Expired(time.Now()) {
		return false, nil
	}

	tok.Consumed = true
	return true, nil
}

// Release un-consumes a token.
func (s *InMemoryTokenStore) Release(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, ok := s.byValue[value]; ok {
		tok.Consumed = false
	}
	return nil
}

// Invalidate removes any live token for the person.
func (s *InMemoryTokenStore) Invalidate(_ context.Context, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.byPerson[personID]; ok {
		delete(s.byValue, value)
		delete(s.byPerson, personID)
	}
	return nil
}

// SweepExpired removes tokens past their expiry.
func (s *InMemoryTokenStore) SweepExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for value, tok := range s.byValue {
		if tok.Expired(now) {
			delete(s.byValue, value)
			if s.byPerson[tok.PersonID] == value {
				delete(s.byPerson, tok.PersonID)
			}
			removed++
		}
	}
	return removed, nil
}

// Ensure InMemoryTokenStore implements TokenStore interface.
var _ TokenStore = (*InMemoryTokenStore)(nil)
