// Package idcache provides the LRU cache holding materialized
// composite-stream ID lists, bounded by total ID count rather than entry
// count so one huge stream cannot starve the rest.
package idcache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/streamscope/model"
)

// LRU is a size-bounded cache of descending ID lists keyed by stream key.
// Capacity is measured in total cached IDs across all entries.
type LRU struct {
	mu        sync.Mutex
	capacity  int
	size      int
	items     map[string]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key string
	ids []model.ActivityID
}

// New creates an LRU holding at most capacity IDs in total.
func New(capacity int) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached list for key. The returned slice must not be
// mutated by the caller.
func (c *LRU) Get(key string) ([]model.ActivityID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).ids, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a list under key, replacing any previous value. A list larger
// than the whole cache capacity is not cached.
func (c *LRU) Set(key string, ids []model.ActivityID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*entry)
		c.size += len(ids) - len(e.ids)
		e.ids = ids
		c.evict()
		return
	}

	if len(ids) > c.capacity {
		return
	}
	for c.size+len(ids) > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
	}

	elem := c.evictList.PushFront(&entry{key: key, ids: ids})
	c.items[key] = elem
	c.size += len(ids)
}

// Invalidate removes the entry for key, if present.
func (c *LRU) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}
}

// InvalidateFunc removes every entry whose key matches the predicate.
func (c *LRU) InvalidateFunc(predicate func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, elem := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, e := range toRemove {
		c.removeElement(e)
	}
}

// Size returns the total number of cached IDs.
func (c *LRU) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns hit and miss counters.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRU) evict() {
	for c.size > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			return
		}
		c.removeElement(back)
	}
}

func (c *LRU) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	ent := e.Value.(*entry)
	delete(c.items, ent.key)
	c.size -= len(ent.ids)
}
