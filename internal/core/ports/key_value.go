package ports

import "context"

// KeyValueStore is the local persistence medium the session is kept in,
// scoped to one device or profile. Values are stored as plaintext.
type KeyValueStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
