package storage

import "errors"

// Common client storage errors
var (
	// ErrSnapshotNotFound indicates that nothing was stored under the key yet
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
