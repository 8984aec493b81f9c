package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/streamscope/model"
)

func TestIsDescending(t *testing.T) {
	assert.True(t, IsDescending(nil))
	assert.True(t, IsDescending([]model.ActivityID{5}))
	assert.True(t, IsDescending([]model.ActivityID{5, 3, 1}))
	assert.False(t, IsDescending([]model.ActivityID{5, 5, 1}))
	assert.False(t, IsDescending([]model.ActivityID{1, 3}))
}

func TestSortDescending(t *testing.T) {
	out := SortDescending([]model.ActivityID{3, 9, 1, 9, 3})
	assert.Equal(t, []model.ActivityID{9, 3, 1}, out)

	assert.Empty(t, SortDescending(nil))
}

func TestInsertCapped(t *testing.T) {
	list := []model.ActivityID{9, 5, 1}

	list = InsertCapped(list, 7, 0)
	assert.Equal(t, []model.ActivityID{9, 7, 5, 1}, list)

	// Existing ID is a no-op.
	list = InsertCapped(list, 5, 0)
	assert.Equal(t, []model.ActivityID{9, 7, 5, 1}, list)

	// New head.
	list = InsertCapped(list, 11, 0)
	assert.Equal(t, []model.ActivityID{11, 9, 7, 5, 1}, list)

	// Cap drops the oldest.
	list = InsertCapped(list, 8, 5)
	assert.Equal(t, []model.ActivityID{11, 9, 8, 7, 5}, list)
}

func TestWindow(t *testing.T) {
	list := []model.ActivityID{50, 40, 30, 20, 10}

	assert.Equal(t, []model.ActivityID{40, 30}, Window(list, 20, 50))
	assert.Equal(t, list, Window(list, 0, model.MaxActivityID))
	assert.Nil(t, Window(list, 40, 50), "bounds are exclusive")
	assert.Nil(t, Window(list, 50, 40))
	assert.Nil(t, Window(nil, 0, model.MaxActivityID))
}

func TestContains(t *testing.T) {
	list := []model.ActivityID{50, 30, 10}

	assert.True(t, Contains(list, 30))
	assert.True(t, Contains(list, 50))
	assert.True(t, Contains(list, 10))
	assert.False(t, Contains(list, 40))
	assert.False(t, Contains(nil, 1))
}
