// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"todo/internal/store"
)

// FakeStore is an in-memory implementation of store.Store for testing.
type FakeStore struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool

	// Writes counts successful Set calls.
	Writes int

	// Error injection for testing
	GetErr   error
	SetErr   error
	CloseErr error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

// Put stores a raw value without counting it as a write.
func (f *FakeStore) Put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

// Value returns the raw value stored under key.
func (f *FakeStore) Value(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

// Closed reports whether Close has been called.
func (f *FakeStore) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

// Get implements store.Store.
func (f *FakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	if key == "" {
		return "", false, store.ErrKeyRequired
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Set implements store.Store.
func (f *FakeStore) Set(ctx context.Context, key, value string) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	if key == "" {
		return store.ErrKeyRequired
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.Writes++
	return nil
}

// Close implements store.Store.
func (f *FakeStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.CloseErr
}

var _ store.Store = (*FakeStore)(nil)
