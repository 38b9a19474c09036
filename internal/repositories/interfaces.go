package repositories

import "context"

// SnapshotRepository persists serialized documents under opaque keys.
// Get returns an empty string (and no error) when the key is absent.
type SnapshotRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, data string) error
}
