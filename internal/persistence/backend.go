// Package persistence stores the theme and preference slices in a key/value
// backend and restores them at startup.
package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when the key has never been written.
var ErrNotFound = errors.New("persistence: entry not found")

// Backend is a key/value store holding serialized entries.
type Backend interface {
	// Name identifies the backend in logs and health output.
	Name() string
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the backend's resources.
	Close() error
}
