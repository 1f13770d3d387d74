package storage

import (
	"context"
	"errors"

	"github.com/stewardhq/steward-go/internal/core/domain"
)

// Common errors returned by store implementations.
var (
	ErrNotFound = errors.New("record not found")
	ErrClosed   = errors.New("store closed")
)

// ClientStore persists registered relay clients.
type ClientStore interface {
	// GetClient returns the client with the given id, or ErrNotFound.
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)

	// PutClient inserts or replaces a client record.
	PutClient(ctx context.Context, client *domain.Client) error

	// DeleteClient removes a client. Returns ErrNotFound if absent.
	DeleteClient(ctx context.Context, clientID string) error

	// ListClients returns all registered clients.
	ListClients(ctx context.Context) ([]*domain.Client, error)
}

// UserStore persists user accounts.
type UserStore interface {
	// GetUser returns the user with the given username, or ErrNotFound.
	GetUser(ctx context.Context, username string) (*domain.User, error)

	// PutUser inserts or replaces a user record.
	PutUser(ctx context.Context, user *domain.User) error

	// DeleteUser removes a user. Returns ErrNotFound if absent.
	DeleteUser(ctx context.Context, username string) error
}

// RelationshipStore persists user-client authorization relationships.
//
// Relationships are matched by predicate rather than primary key: the
// authorization pipeline looks them up by varying combinations of
// username, client id, token, and scope.
type RelationshipStore interface {
	// Insert stores a relationship.
	Insert(ctx context.Context, rel *domain.Relationship) error

	// Find returns all relationships of the given kind matching the
	// predicate. An empty predicate matches every relationship of the
	// kind. The result is empty, not an error, when nothing matches.
	Find(ctx context.Context, kind domain.RelationshipKind, pred domain.Predicate) ([]*domain.Relationship, error)

	// Delete removes all relationships of the given kind matching the
	// predicate and reports whether at least one was removed.
	Delete(ctx context.Context, kind domain.RelationshipKind, pred domain.Predicate) (bool, error)
}

// Store bundles the three record stores behind one engine.
type Store interface {
	ClientStore
	UserStore
	RelationshipStore

	// Close releases engine resources. Operations after Close return
	// ErrClosed.
	Close() error
}
