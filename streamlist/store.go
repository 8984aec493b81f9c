package streamlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/hupe1980/streamscope/fetch"
	"github.com/hupe1980/streamscope/internal/idcache"
	"github.com/hupe1980/streamscope/internal/ids"
	"github.com/hupe1980/streamscope/model"
)

// DefaultMaxItems is the safety cap on a single cached list. Precomputed
// stream lists are unbounded in principle; the cap keeps one stream from
// dominating memory and bounds conservative merges.
const DefaultMaxItems = 10000

// DefaultCacheCapacity is the default total ID capacity of the store.
const DefaultCacheCapacity = 1 << 20

// Loader computes a stream's ID list from the backing store on a cache
// miss. Results need not be sorted; the store normalizes them.
type Loader interface {
	LoadIDs(ctx context.Context, key string) ([]model.ActivityID, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, key string) ([]model.ActivityID, error)

// LoadIDs calls f.
func (f LoaderFunc) LoadIDs(ctx context.Context, key string) ([]model.ActivityID, error) {
	return f(ctx, key)
}

// Store caches precomputed composite-stream ID lists: descending, capped,
// keyed by stream key. Misses are filled through the loader with
// singleflight dedup so one expensive recompute serves all concurrent
// requests for the same key. A roaring bitmap per key provides O(1)
// membership for the security trimmer.
//
// Store is safe for concurrent use.
type Store struct {
	loader   Loader
	cache    *idcache.LRU
	maxItems int
	logger   *slog.Logger

	flight singleflight.Group

	// refreshLimit throttles explicit refreshes so cache invalidation
	// storms do not overload the backing store.
	refreshLimit *rate.Limiter

	mu      sync.RWMutex
	bitmaps map[string]*roaring64.Bitmap
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxItems overrides the per-list safety cap.
func WithMaxItems(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithCacheCapacity overrides the total ID capacity of the cache.
func WithCacheCapacity(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.cache = idcache.New(n)
		}
	}
}

// WithRefreshRate overrides the refresh throttle (refreshes per second).
func WithRefreshRate(perSecond float64, burst int) StoreOption {
	return func(s *Store) {
		s.refreshLimit = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a stream-list store backed by the given loader.
func NewStore(loader Loader, opts ...StoreOption) *Store {
	s := &Store{
		loader:       loader,
		cache:        idcache.New(DefaultCacheCapacity),
		maxItems:     DefaultMaxItems,
		logger:       slog.Default(),
		refreshLimit: rate.NewLimiter(rate.Limit(10), 20),
		bitmaps:      make(map[string]*roaring64.Bitmap),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IDs returns the descending ID list for key, loading it on a miss. The
// returned slice is shared; callers must not mutate it.
func (s *Store) IDs(ctx context.Context, key string) ([]model.ActivityID, error) {
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent filler may have won.
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
		return s.fill(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.ActivityID), nil
}

func (s *Store) fill(ctx context.Context, key string) ([]model.ActivityID, error) {
	loaded, err := s.loader.LoadIDs(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load stream list %q: %w", key, err)
	}

	list := ids.SortDescending(loaded)
	if len(list) > s.maxItems {
		s.logger.Warn("stream list truncated to safety cap",
			"key", key, "loaded", len(list), "cap", s.maxItems)
		list = list[:s.maxItems]
	}

	s.cache.Set(key, list)
	s.setBitmap(key, list)
	s.logger.Debug("stream list filled", "key", key, "count", len(list))
	return list, nil
}

// Contains reports whether the stream identified by key contains id,
// filling the list on a miss.
func (s *Store) Contains(ctx context.Context, key string, id model.ActivityID) (bool, error) {
	s.mu.RLock()
	bm, ok := s.bitmaps[key]
	s.mu.RUnlock()
	if ok {
		return bm.Contains(uint64(id)), nil
	}
	if _, err := s.IDs(ctx, key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	bm, ok = s.bitmaps[key]
	return ok && bm.Contains(uint64(id)), nil
}

// Add inserts a newly posted activity into an already-cached list. A miss
// is a no-op: the next IDs call recomputes the list anyway.
func (s *Store) Add(key string, id model.ActivityID) {
	cached, ok := s.cache.Get(key)
	if !ok {
		return
	}
	updated := ids.InsertCapped(append([]model.ActivityID(nil), cached...), id, s.maxItems)
	s.cache.Set(key, updated)
	s.setBitmap(key, updated)
}

// AddMatching inserts id into every cached list whose key satisfies match.
// Used on the write path to keep warm lists current without recomputes.
func (s *Store) AddMatching(match func(key string) bool, id model.ActivityID) {
	for _, key := range s.matchingKeys(match) {
		s.Add(key, id)
	}
}

// InvalidateMatching drops every cached list whose key satisfies match.
func (s *Store) InvalidateMatching(match func(key string) bool) {
	for _, key := range s.matchingKeys(match) {
		s.Invalidate(key)
	}
}

func (s *Store) matchingKeys(match func(key string) bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.bitmaps {
		if match(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Invalidate drops the cached list for key.
func (s *Store) Invalidate(key string) {
	s.cache.Invalidate(key)
	s.mu.Lock()
	delete(s.bitmaps, key)
	s.mu.Unlock()
}

// Refresh recomputes the list for key through the loader, honoring the
// refresh throttle.
func (s *Store) Refresh(ctx context.Context, key string) error {
	if err := s.refreshLimit.Wait(ctx); err != nil {
		return err
	}
	_, err, _ := s.flight.Do("refresh:"+key, func() (any, error) {
		return s.fill(ctx, key)
	})
	return err
}

// PageFetcher returns a fetcher serving pages of the stream's cached ID
// list. The list is materialized (and capped) on the first page fetch.
func (s *Store) PageFetcher(key string) fetch.PageFetcher[model.ActivityID] {
	return &listFetcher{store: s, key: key}
}

func (s *Store) setBitmap(key string, list []model.ActivityID) {
	bm := roaring64.New()
	for _, id := range list {
		bm.Add(uint64(id))
	}
	s.mu.Lock()
	s.bitmaps[key] = bm
	s.mu.Unlock()
}

// forEach iterates a snapshot of the cached lists. Used by snapshot
// persistence.
func (s *Store) forEach(fn func(key string, list []model.ActivityID) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.bitmaps))
	for k := range s.bitmaps {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	for _, k := range keys {
		if list, ok := s.cache.Get(k); ok {
			if err := fn(k, list); err != nil {
				return err
			}
		}
	}
	return nil
}

// restore installs a snapshot entry without consulting the loader.
func (s *Store) restore(key string, list []model.ActivityID) {
	if len(list) > s.maxItems {
		list = list[:s.maxItems]
	}
	s.cache.Set(key, list)
	s.setBitmap(key, list)
}

// listFetcher pages over a cached composite-stream ID list.
type listFetcher struct {
	store *Store
	key   string
}

func (f *listFetcher) FetchPage(ctx context.Context, start, pageSize int) ([]model.ActivityID, error) {
	if err := fetch.ValidatePageArgs(start, pageSize); err != nil {
		return nil, err
	}
	list, err := f.store.IDs(ctx, f.key)
	if err != nil {
		return nil, err
	}
	if start >= len(list) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], nil
}
