package ports

import "context"

// KVStore is the durable per-origin key/value store the client persists
// sessions and interaction mirrors into. Values are JSON documents.
type KVStore interface {
	// Get returns the value under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set overwrites the value under key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	Close() error
}
