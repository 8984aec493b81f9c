package bm25

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamscope/lexical"
	"github.com/hupe1980/streamscope/model"
)

func testIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	idx := New()
	docs := []model.Activity{
		{ID: 1, Content: "apple pie recipe"},
		{ID: 2, Content: "banana bread recipe"},
		{ID: 3, Content: "apple banana smoothie"},
		{ID: 4, Content: "quarterly report"},
	}
	for _, d := range docs {
		require.NoError(t, idx.Add(d))
	}
	return idx
}

func TestSearchIDs_DescendingOrder(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	ids, err := idx.SearchIDs(ctx, "apple", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{3, 1}, ids)

	ids, err = idx.SearchIDs(ctx, "recipe banana", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{3, 2, 1}, ids, "bare terms match any")
}

func TestSearchIDs_RequiredAndExcluded(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	ids, err := idx.SearchIDs(ctx, "+apple +banana", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{3}, ids)

	ids, err = idx.SearchIDs(ctx, "recipe -apple", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{2}, ids)

	ids, err = idx.SearchIDs(ctx, "recipe NOT banana", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{1}, ids)
}

func TestSearchIDs_EverythingKeyword(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	// The everything keyword is indexed into every document, so a padded
	// NOT-only query matches the rest of the corpus.
	ids, err := idx.SearchIDs(ctx, "-apple "+model.EverythingKeyword, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{4, 2}, ids)
}

func TestSearch_GrammarErrors(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	_, err := idx.SearchIDs(ctx, `"unbalanced`, 0, 10)
	assert.ErrorIs(t, err, lexical.ErrQueryGrammar)

	_, err = idx.SearchIDs(ctx, "(unbalanced", 0, 10)
	assert.ErrorIs(t, err, lexical.ErrQueryGrammar)

	_, err = idx.SearchIDs(ctx, "apple NOT", 0, 10)
	assert.ErrorIs(t, err, lexical.ErrQueryGrammar)

	_, err = idx.SearchIDs(ctx, "-apple -banana", 0, 10)
	assert.ErrorIs(t, err, lexical.ErrQueryGrammar)
}

func TestSearchRanked(t *testing.T) {
	ctx := context.Background()
	idx := New()
	require.NoError(t, idx.Add(model.Activity{ID: 1, Content: "apple apple apple"}))
	require.NoError(t, idx.Add(model.Activity{ID: 2, Content: "apple banana cherry durian elderberry"}))
	require.NoError(t, idx.Add(model.Activity{ID: 3, Content: "cherry"}))

	ids, err := idx.SearchRanked(ctx, "apple", 0, 10)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, model.ActivityID(1), ids[0], "higher term frequency ranks first")
	assert.Equal(t, model.ActivityID(2), ids[1])
}

func TestSearch_Window(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	ids, err := idx.SearchIDs(ctx, "recipe banana", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{2}, ids)

	ids, err = idx.SearchIDs(ctx, "recipe banana", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	require.NoError(t, idx.Delete(3))
	ids, err := idx.SearchIDs(ctx, "apple", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{1}, ids)

	// Deleting an unknown ID is a no-op.
	assert.NoError(t, idx.Delete(99))
}

func TestAdd_Replaces(t *testing.T) {
	ctx := context.Background()
	idx := testIndex(t)

	require.NoError(t, idx.Add(model.Activity{ID: 1, Content: "completely different now"}))

	ids, err := idx.SearchIDs(ctx, "apple", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{3}, ids)

	ids, err = idx.SearchIDs(ctx, "different", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{1}, ids)
}

func TestSearch_EmptyIndex(t *testing.T) {
	ctx := context.Background()
	idx := New()

	ids, err := idx.SearchIDs(ctx, "anything", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
