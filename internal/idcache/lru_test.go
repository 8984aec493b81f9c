package idcache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/streamscope/model"
)

func TestLRU_GetSet(t *testing.T) {
	c := New(100)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", []model.ActivityID{3, 2, 1})
	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []model.ActivityID{3, 2, 1}, got)
	assert.Equal(t, 3, c.Size())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_EvictsByIDCount(t *testing.T) {
	c := New(10)

	c.Set("a", make([]model.ActivityID, 4))
	c.Set("b", make([]model.ActivityID, 4))
	c.Set("c", make([]model.ActivityID, 4)) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 8, c.Size())
}

func TestLRU_GetRefreshesRecency(t *testing.T) {
	c := New(10)

	c.Set("a", make([]model.ActivityID, 4))
	c.Set("b", make([]model.ActivityID, 4))
	c.Get("a") // "b" is now the eviction candidate
	c.Set("c", make([]model.ActivityID, 4))

	_, ok := c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestLRU_OversizedEntry(t *testing.T) {
	c := New(5)

	c.Set("huge", make([]model.ActivityID, 6))
	_, ok := c.Get("huge")
	assert.False(t, ok, "entry larger than capacity is not cached")
	assert.Equal(t, 0, c.Size())
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := New(10)

	c.Set("a", make([]model.ActivityID, 3))
	c.Set("a", make([]model.ActivityID, 7))
	assert.Equal(t, 7, c.Size())
}

func TestLRU_Invalidate(t *testing.T) {
	c := New(100)

	c.Set("visible:1", []model.ActivityID{1})
	c.Set("visible:2", []model.ActivityID{2})
	c.Set("everyone", []model.ActivityID{3})

	c.Invalidate("everyone")
	_, ok := c.Get("everyone")
	assert.False(t, ok)

	c.InvalidateFunc(func(key string) bool { return key != "" && key[0] == 'v' })
	_, ok = c.Get("visible:1")
	assert.False(t, ok)
	_, ok = c.Get("visible:2")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}
