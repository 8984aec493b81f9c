package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/transform"
)

// newTestDB opens an in-memory database with a fixture directory:
//
//	people:   alice=1, bob=2, carol=3
//	groups:   devs=10 (public), war-room=11 (private)
//	orgs:     eng=20, platform=21 (descendant of eng)
//	apps:     poller=30
//
// Activities, newest last:
//
//	100  alice -> bob (person stream), org eng
//	101  bob   -> devs, org eng, via poller
//	102  carol -> war-room, org platform
//	103  alice -> alice (person stream), org platform, via poller
//
// alice follows bob's stream and the devs group, and is a member of both
// groups. bob saved activities 100 and 103.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	sdb, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })

	db := New(sdb, nil)
	require.NoError(t, db.Migrate(ctx))
	// Migrations are idempotent.
	require.NoError(t, db.Migrate(ctx))

	require.NoError(t, db.AddPerson(ctx, 1, "alice"))
	require.NoError(t, db.AddPerson(ctx, 2, "bob"))
	require.NoError(t, db.AddPerson(ctx, 3, "carol"))
	require.NoError(t, db.AddGroup(ctx, 10, "devs", false))
	require.NoError(t, db.AddGroup(ctx, 11, "war-room", true))
	require.NoError(t, db.AddOrganization(ctx, 20, "eng"))
	require.NoError(t, db.AddOrganization(ctx, 21, "platform"))
	require.NoError(t, db.AddOrgDescendant(ctx, 20, 21))
	require.NoError(t, db.AddApplication(ctx, 30, "poller"))

	for _, a := range []model.Activity{
		{ID: 100, AuthorID: 1, RecipientID: 2, RecipientType: model.EntityPerson, OrgID: 20, Content: "hello bob"},
		{ID: 101, AuthorID: 2, RecipientID: 10, RecipientType: model.EntityGroup, OrgID: 20, AppID: 30, Content: "release notes"},
		{ID: 102, AuthorID: 3, RecipientID: 11, RecipientType: model.EntityGroup, OrgID: 21, Content: "incident review"},
		{ID: 103, AuthorID: 1, RecipientID: 1, RecipientType: model.EntityPerson, OrgID: 21, AppID: 30, Content: "daily update"},
	} {
		require.NoError(t, db.InsertActivity(ctx, a))
	}

	require.NoError(t, db.Follow(ctx, 1, model.EntityPerson, 2))
	require.NoError(t, db.Follow(ctx, 1, model.EntityGroup, 10))
	require.NoError(t, db.JoinGroup(ctx, 1, 10))
	require.NoError(t, db.JoinGroup(ctx, 1, 11))
	require.NoError(t, db.JoinGroup(ctx, 3, 11))
	require.NoError(t, db.SaveActivity(ctx, 2, 100))
	require.NoError(t, db.SaveActivity(ctx, 2, 103))

	return db
}

func TestDirectoryLookups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.PersonID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.EntityID(1), id)

	id, err = db.GroupID(ctx, "devs")
	require.NoError(t, err)
	assert.Equal(t, model.EntityID(10), id)

	id, err = db.OrgID(ctx, "eng")
	require.NoError(t, err)
	assert.Equal(t, model.EntityID(20), id)

	id, err = db.AppID(ctx, "poller")
	require.NoError(t, err)
	assert.Equal(t, model.EntityID(30), id)

	_, err = db.PersonID(ctx, "nobody")
	assert.ErrorIs(t, err, transform.ErrUnknownEntity)
	_, err = db.GroupID(ctx, "ghosts")
	assert.ErrorIs(t, err, transform.ErrUnknownEntity)
}

func TestLoadIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tests := []struct {
		key  string
		want []model.ActivityID
	}{
		// Everything except the private-group activity.
		{"everyone", []model.ActivityID{103, 101, 100}},
		// alice follows bob's stream and the devs group.
		{"followedBy:1", []model.ActivityID{101, 100}},
		// alice's groups are devs and war-room.
		{"joinedGroups:1", []model.ActivityID{102, 101}},
		{"savedBy:2", []model.ActivityID{103, 100}},
		{"authoredBy:1", []model.ActivityID{103, 100}},
		{"recipient:10", []model.ActivityID{101}},
		{"recipient:2", []model.ActivityID{100}},
		// alice is a war-room member, bob is not.
		{"visible:1", []model.ActivityID{103, 102, 101, 100}},
		{"visible:2", []model.ActivityID{103, 101, 100}},
		{"savedBy:3", nil},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := db.LoadIDs(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadIDs_BadKeys(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.LoadIDs(ctx, "nefarious:1")
	assert.Error(t, err)
	_, err = db.LoadIDs(ctx, "noseparator")
	assert.Error(t, err)
	_, err = db.LoadIDs(ctx, "followedBy:notanumber")
	assert.Error(t, err)
}

func TestActivities_PreservesOrderSkipsMissing(t *testing.T) {
	db := newTestDB(t)

	got, err := db.Activities(context.Background(), []model.ActivityID{103, 999, 100})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.ActivityID(103), got[0].ID)
	assert.Equal(t, model.ActivityID(100), got[1].ID)
	assert.Equal(t, "hello bob", got[1].Content)
	assert.Equal(t, model.EntityPerson, got[1].RecipientType)
	assert.Equal(t, model.EntityID(20), got[1].OrgID)

	got, err = db.Activities(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestForEachActivity_AscendingOrder(t *testing.T) {
	db := newTestDB(t)

	var seen []model.ActivityID
	err := db.ForEachActivity(context.Background(), func(a model.Activity) error {
		seen = append(seen, a.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{100, 101, 102, 103}, seen)
}

func TestIDsByAuthors(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := db.IDsByAuthors(ctx, []model.EntityID{1, 2}, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{103, 101, 100}, got)

	// Limit truncates from the newest end.
	got, err = db.IDsByAuthors(ctx, []model.EntityID{1}, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{103}, got)

	got, err = db.IDsByAuthors(ctx, nil, 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIDsByRecipients(t *testing.T) {
	db := newTestDB(t)

	got, err := db.IDsByRecipients(context.Background(), []model.EntityID{10, 11}, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{102, 101}, got)
}

func TestIDsByOrgs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := db.IDsByOrgs(ctx, []model.EntityID{20}, false, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{101, 100}, got)

	// Recursive includes the platform suborg.
	got, err = db.IDsByOrgs(ctx, []model.EntityID{20}, true, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{103, 102, 101, 100}, got)
}

func TestIDsByApps(t *testing.T) {
	db := newTestDB(t)

	got, err := db.IDsByApps(context.Background(), []model.EntityID{30}, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{103, 101}, got)
}

func TestRelationshipReads(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	followers, err := db.Followers(ctx, model.EntityGroup, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.EntityID{1}, followers)

	members, err := db.GroupMembers(ctx, 11)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.EntityID{1, 3}, members)

	private, err := db.GroupPrivate(ctx, 11)
	require.NoError(t, err)
	assert.True(t, private)

	private, err = db.GroupPrivate(ctx, 10)
	require.NoError(t, err)
	assert.False(t, private)

	// Unknown groups are treated as private.
	private, err = db.GroupPrivate(ctx, 999)
	require.NoError(t, err)
	assert.True(t, private)
}

func TestSaveUnsaveActivity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Saving twice is a no-op.
	require.NoError(t, db.SaveActivity(ctx, 2, 100))

	require.NoError(t, db.UnsaveActivity(ctx, 2, 100))
	got, err := db.LoadIDs(ctx, "savedBy:2")
	require.NoError(t, err)
	assert.Equal(t, []model.ActivityID{103}, got)
}
