package storage

import "context"

// KVBackend is durable key-value persistence for opaque byte values.
// Implementations must be safe for concurrent use.
type KVBackend interface {
	// Put stores value under key, replacing any previous value atomically.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key.
	Clear(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}
