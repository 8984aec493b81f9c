package collide

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/streamscope/model"
)

func TestCollide_Union(t *testing.T) {
	a := []model.ActivityID{10, 8, 6}
	b := []model.ActivityID{9, 8, 2}

	assert.Equal(t, []model.ActivityID{10, 9, 8, 6, 2}, Collide(a, b, 10))
}

func TestCollide_Budget(t *testing.T) {
	a := []model.ActivityID{10, 8, 6}
	b := []model.ActivityID{9, 8, 2}

	assert.Equal(t, []model.ActivityID{10, 9, 8}, Collide(a, b, 3))
	assert.Nil(t, Collide(a, b, 0))
	assert.Nil(t, Collide(a, b, -1))
}

func TestCollide_OverlappingTails(t *testing.T) {
	a := []model.ActivityID{20, 15, 11, 9, 8}
	b := []model.ActivityID{20, 17, 15, 11, 9, 8, 5}

	assert.Equal(t, []model.ActivityID{20, 17, 15, 11, 9, 8, 5}, Collide(a, b, 10))
	assert.Equal(t, []model.ActivityID{20, 17, 15}, Collide(a, b, 3))
}

func TestCollide_Dedup(t *testing.T) {
	a := []model.ActivityID{5, 4, 3}

	out := Collide(a, a, 10)
	assert.Equal(t, []model.ActivityID{5, 4, 3}, out)
}

func TestCollide_OneSideEmpty(t *testing.T) {
	a := []model.ActivityID{7, 3}

	assert.Equal(t, []model.ActivityID{7, 3}, Collide(a, nil, 10))
	assert.Equal(t, []model.ActivityID{7, 3}, Collide(nil, a, 10))
	assert.Empty(t, Collide(nil, nil, 10))
}

func TestFold(t *testing.T) {
	out := Fold(10,
		[]model.ActivityID{9, 5},
		[]model.ActivityID{8, 5, 1},
		[]model.ActivityID{7},
	)
	assert.Equal(t, []model.ActivityID{9, 8, 7, 5, 1}, out)

	assert.Nil(t, Fold(10))
	assert.Equal(t, []model.ActivityID{3, 2}, Fold(2, []model.ActivityID{3, 2, 1}))
}
