package streamlist

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/hupe1980/streamscope/blobstore"
	"github.com/hupe1980/streamscope/model"
)

// snapshotVersion is bumped when the snapshot encoding changes.
const snapshotVersion = 1

// snapshotFile is the serialized form of the cached stream lists.
type snapshotFile struct {
	Version   int                           `json:"version"`
	CreatedAt time.Time                     `json:"created_at"`
	Lists     map[string][]model.ActivityID `json:"lists"`
}

// Snapshotter persists the warm contents of a Store to a blob store so a
// restarted process can serve without a cold-cache stampede against the
// backing loader. Snapshots are best-effort: a restored list is still
// subject to Invalidate and Refresh like any cached entry.
type Snapshotter struct {
	store       *Store
	blobs       blobstore.Store
	compression blobstore.Compression
}

// NewSnapshotter creates a snapshotter writing to blobs with the given
// block compression.
func NewSnapshotter(store *Store, blobs blobstore.Store, compression blobstore.Compression) *Snapshotter {
	return &Snapshotter{
		store:       store,
		blobs:       blobs,
		compression: compression,
	}
}

// Save serializes all cached lists to a single compressed blob under name.
func (s *Snapshotter) Save(ctx context.Context, name string) error {
	file := snapshotFile{
		Version:   snapshotVersion,
		CreatedAt: time.Now().UTC(),
		Lists:     make(map[string][]model.ActivityID),
	}
	err := s.store.forEach(func(key string, list []model.ActivityID) error {
		file.Lists[key] = list
		return nil
	})
	if err != nil {
		return err
	}

	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	block, err := blobstore.CompressBlock(data, s.compression)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := s.blobs.Put(ctx, name, block); err != nil {
		return fmt.Errorf("write snapshot %q: %w", name, err)
	}
	return nil
}

// Load restores the lists from the blob named name into the store's cache.
// Each restored list is re-capped against the store's current safety cap.
func (s *Snapshotter) Load(ctx context.Context, name string) error {
	block, err := s.blobs.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("read snapshot %q: %w", name, err)
	}
	data, err := blobstore.DecompressBlock(block)
	if err != nil {
		return fmt.Errorf("decompress snapshot %q: %w", name, err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("unmarshal snapshot %q: %w", name, err)
	}
	if file.Version != snapshotVersion {
		return fmt.Errorf("snapshot %q: unsupported version %d", name, file.Version)
	}

	for key, list := range file.Lists {
		s.store.restore(key, list)
	}
	return nil
}
