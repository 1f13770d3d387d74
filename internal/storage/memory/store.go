package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/storage"
	"github.com/stewardhq/steward-go/pkg/cmap"
)

// Store is the in-memory implementation of storage.Store.
type Store struct {
	clients *cmap.Map[string, *domain.Client]
	users   *cmap.Map[string, *domain.User]

	relMu sync.RWMutex
	rels  []*domain.Relationship

	closed atomic.Bool
}

var _ storage.Store = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		clients: cmap.New[string, *domain.Client](),
		users:   cmap.New[string, *domain.User](),
	}
}

// GetClient returns the client with the given id.
func (s *Store) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}

	client, ok := s.clients.Get(clientID)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return client, nil
}

// PutClient inserts or replaces a client record.
func (s *Store) PutClient(ctx context.Context, client *domain.Client) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}

	s.clients.Set(client.ClientID, client)
	return nil
}

// DeleteClient removes a client.
func (s *Store) DeleteClient(ctx context.Context, clientID string) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}

	if _, ok := s.clients.Pop(clientID); !ok {
		return storage.ErrNotFound
	}
	return nil
}

// ListClients returns all registered clients.
func (s *Store) ListClients(ctx context.Context) ([]*domain.Client, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}

	return s.clients.Values(), nil
}

// GetUser returns the user with the given username.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}

	user, ok := s.users.Get(username)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

// PutUser inserts or replaces a user record.
func (s *Store) PutUser(ctx context.Context, user *domain.User) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}

	s.users.Set(user.Username, user)
	return nil
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}

	if _, ok := s.users.Pop(username); !ok {
		return storage.ErrNotFound
	}
	return nil
}

// Insert stores a relationship.
func (s *Store) Insert(ctx context.Context, rel *domain.Relationship) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}

	s.relMu.Lock()
	defer s.relMu.Unlock()

	s.rels = append(s.rels, rel.Clone())
	return nil
}

// Find returns all relationships of the given kind matching the predicate.
func (s *Store) Find(ctx context.Context, kind domain.RelationshipKind, pred domain.Predicate) ([]*domain.Relationship, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}

	s.relMu.RLock()
	defer s.relMu.RUnlock()

	var matched []*domain.Relationship
	for _, rel := range s.rels {
		if rel.Kind == kind && rel.Matches(pred) {
			matched = append(matched, rel.Clone())
		}
	}
	return matched, nil
}

// Delete removes all relationships of the given kind matching the predicate.
func (s *Store) Delete(ctx context.Context, kind domain.RelationshipKind, pred domain.Predicate) (bool, error) {
	if s.closed.Load() {
		return false, storage.ErrClosed
	}

	s.relMu.Lock()
	defer s.relMu.Unlock()

	kept := s.rels[:0]
	removed := false
	for _, rel := range s.rels {
		if rel.Kind == kind && rel.Matches(pred) {
			removed = true
			continue
		}
		kept = append(kept, rel)
	}
	s.rels = kept
	return removed, nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}
