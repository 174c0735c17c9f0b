// Package store defines the durable key-value contract the task manager
// persists through. Backends live under internal/backend.
package store

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a backend whose handle is nil or closed.
var ErrNotConfigured = errors.New("storage is not configured")

// ErrKeyRequired is returned when an empty key is passed to a backend.
var ErrKeyRequired = errors.New("storage key is required")

// Store is a durable string key-value store.
//
// Set replaces the whole value for key atomically: a concurrent or later
// reader sees either the previous value or the new one, never a mix.
type Store interface {
	// Get returns the value stored under key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Close releases the backend.
	Close() error
}
