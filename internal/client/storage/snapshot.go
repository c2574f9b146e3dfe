package storage

import (
	"context"
)

//go:generate moq -out storage_mock.go . SnapshotStorage

// SnapshotStorage defines the durable key/value store behind the local cache.
// The cache writes the whole serialized snapshot under a single key, so
// implementations only need atomic whole-value reads and writes.
type SnapshotStorage interface {
	// Load returns the value stored under key.
	// Returns ErrSnapshotNotFound if nothing was stored yet
	Load(ctx context.Context, key string) ([]byte, error)

	// Save overwrites the value stored under key in one atomic write
	Save(ctx context.Context, key string, data []byte) error
}
