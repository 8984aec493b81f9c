package transform

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/query"
)

// fakeDirectory resolves from fixed maps.
type fakeDirectory struct {
	people map[string]model.EntityID
	groups map[string]model.EntityID
	orgs   map[string]model.EntityID
	apps   map[string]model.EntityID
}

func (d *fakeDirectory) lookup(m map[string]model.EntityID, name string) (model.EntityID, error) {
	if id, ok := m[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownEntity)
}

func (d *fakeDirectory) PersonID(_ context.Context, name string) (model.EntityID, error) {
	return d.lookup(d.people, name)
}

func (d *fakeDirectory) GroupID(_ context.Context, name string) (model.EntityID, error) {
	return d.lookup(d.groups, name)
}

func (d *fakeDirectory) OrgID(_ context.Context, name string) (model.EntityID, error) {
	return d.lookup(d.orgs, name)
}

func (d *fakeDirectory) AppID(_ context.Context, name string) (model.EntityID, error) {
	return d.lookup(d.apps, name)
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		people: map[string]model.EntityID{"alice": 1, "bob": 2},
		groups: map[string]model.EntityID{"devs": 10},
		orgs:   map[string]model.EntityID{"eng": 20},
		apps:   map[string]model.EntityID{"poller": 30},
	}
}

func TestResolveQuery_PopulatesEntities(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testDirectory())

	q := &query.Query{Clauses: []query.Clause{
		{Kind: query.ClauseFollowedBy, Names: []string{"alice", "bob"}},
		{Kind: query.ClauseOrganization, Names: []string{"eng"}},
		{Kind: query.ClauseFromApp, Names: []string{"poller"}},
		{Kind: query.ClauseKeywords, Text: "hello"},
	}}

	resolved, err := r.ResolveQuery(ctx, q, 1)
	require.NoError(t, err)

	assert.Equal(t, []model.EntityID{1, 2}, resolved.Clauses[0].Entities)
	assert.Equal(t, []model.EntityID{20}, resolved.Clauses[1].Entities)
	assert.Equal(t, []model.EntityID{30}, resolved.Clauses[2].Entities)
	assert.Empty(t, resolved.Clauses[3].Entities, "keyword clause passes through")

	// The input query is not mutated.
	assert.Empty(t, q.Clauses[0].Entities)
}

func TestResolveQuery_RecipientFallsBackToGroup(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testDirectory())

	q := &query.Query{Clauses: []query.Clause{
		{Kind: query.ClauseRecipient, Names: []string{"alice", "devs"}},
	}}

	resolved, err := r.ResolveQuery(ctx, q, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.EntityID{1, 10}, resolved.Clauses[0].Entities)
}

func TestResolveQuery_SavedByAuthorization(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testDirectory())

	q := &query.Query{Clauses: []query.Clause{
		{Kind: query.ClauseSavedBy, Names: []string{"alice"}},
	}}

	// Alice asking for her own saved list.
	resolved, err := r.ResolveQuery(ctx, q, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.EntityID{1}, resolved.Clauses[0].Entities)

	// Bob asking for Alice's saved list.
	_, err = r.ResolveQuery(ctx, q, 2)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// More than one account is never allowed.
	multi := &query.Query{Clauses: []query.Clause{
		{Kind: query.ClauseSavedBy, Names: []string{"alice", "bob"}},
	}}
	_, err = r.ResolveQuery(ctx, multi, 1)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestResolveQuery_UnknownName(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testDirectory())

	q := &query.Query{Clauses: []query.Clause{
		{Kind: query.ClauseAuthoredBy, Names: []string{"nobody"}},
	}}

	_, err := r.ResolveQuery(ctx, q, 1)
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestResolveQuery_UnknownClausePassesThrough(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(testDirectory())

	q := &query.Query{Clauses: []query.Clause{
		{Kind: query.ClauseUnknown, Key: "widget", Names: []string{"x"}},
	}}

	resolved, err := r.ResolveQuery(ctx, q, 1)
	require.NoError(t, err)
	assert.Empty(t, resolved.Clauses[0].Entities)
}
