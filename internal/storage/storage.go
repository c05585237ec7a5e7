// Package storage provides key/value persistence for client preferences.
//
// The Storage interface mirrors browser localStorage: string keys, string
// values, and a missing key is not an error. SQLite is the durable backend;
// Memory backs tests and ephemeral sessions.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed storage.
var ErrClosed = errors.New("storage closed")

// ErrEmptyKey is returned when a key is empty.
var ErrEmptyKey = errors.New("empty storage key")

// Storage is a string key/value store.
type Storage interface {
	// GetItem returns the value for key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Keys returns every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)

	// Clear deletes every key.
	Clear(ctx context.Context) error

	// Close releases resources held by the storage.
	Close() error
}
