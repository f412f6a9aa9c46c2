// Package storage is the key/value persistence layer. Backends notify about
// changes made by other execution contexts (another process or handle) to the
// same keys.
package storage

import "context"

// Change describes a value observed to change outside this context.
type Change struct {
	Key     string
	Value   []byte
	Deleted bool
}

// Backend is a key/value byte store with cross-context change notification.
type Backend interface {
	// Get returns the stored bytes and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error

	// Watch streams changes made by other contexts until ctx is done.
	// Writes made through this Backend are never reported back.
	Watch(ctx context.Context) (<-chan Change, error)

	Close() error
}
