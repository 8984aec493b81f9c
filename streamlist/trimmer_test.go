package streamlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamscope/model"
)

func TestTrimmer_FiltersToVisibleSet(t *testing.T) {
	ctx := context.Background()
	loader := &mapLoader{lists: map[string][]model.ActivityID{
		VisibleKey(1): {50, 30, 10},
	}}
	trimmer := NewTrimmer(NewStore(loader))

	got, err := trimmer.Trim(ctx, []model.ActivityID{50, 40, 30, 20, 10}, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{50, 30, 10}, got)
}

func TestTrimmer_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	loader := &mapLoader{lists: map[string][]model.ActivityID{
		VisibleKey(1): {50, 30, 10},
	}}
	trimmer := NewTrimmer(NewStore(loader))

	// Relevance-ordered candidates stay in their order.
	got, err := trimmer.Trim(ctx, []model.ActivityID{30, 50, 20}, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{30, 50}, got)
}

func TestTrimmer_EmptyInputs(t *testing.T) {
	ctx := context.Background()
	loader := &mapLoader{lists: map[string][]model.ActivityID{}}
	trimmer := NewTrimmer(NewStore(loader))

	got, err := trimmer.Trim(ctx, nil, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	// A user with no visible set sees nothing.
	got, err = trimmer.Trim(ctx, []model.ActivityID{5, 4}, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}
