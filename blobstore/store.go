package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err,
// ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for persisting stream-list snapshot blobs.
// Snapshots are small (compressed ID lists), so the interface is
// whole-value rather than streaming.
type Store interface {
	// Put writes a blob, replacing any previous value.
	Put(ctx context.Context, name string, data []byte) error
	// Get reads a blob. Returns ErrNotFound if the blob does not exist.
	Get(ctx context.Context, name string) ([]byte, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
