// Package store provides named-value persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/spboyer/social-media-post-ge/internal/domain"
)

// Store defines the interface for persisting per-user named values.
type Store interface {
	// Get retrieves a named value. It returns (nil, nil) when no value is
	// stored under the key.
	Get(ctx context.Context, userID, key string) (*domain.NamedValue, error)

	// Put creates or replaces a named value.
	Put(ctx context.Context, value *domain.NamedValue) error

	// Delete removes a named value and reports whether one was present.
	Delete(ctx context.Context, userID, key string) (bool, error)

	// List retrieves all named values for a user, ordered by key.
	List(ctx context.Context, userID string) ([]*domain.NamedValue, error)

	// Ping verifies backend connectivity and returns an error if the backend
	// is unreachable.
	Ping(ctx context.Context) error

	// Close closes the backend connection.
	Close() error
}
