// Package streamlist caches precomputed composite-stream activity ID
// lists.
//
// A composite stream (everything a person follows, a person's saved
// items, the groups a person joined, a single entity's stream) is
// expensive to recompute, so the store keeps each list in an LRU cache
// keyed by stream key, filled through a Loader on miss with singleflight
// dedup. Lists are held newest-first and truncated to a safety cap.
//
// # Membership
//
// Each cached list carries a roaring bitmap so the security trimmer can
// answer "is this activity visible to this user" in O(1) without scanning
// the list.
//
// # Snapshots
//
// Snapshotter serializes the warm cache to a blob store and restores it
// on startup, avoiding a recompute stampede after a restart.
package streamlist
