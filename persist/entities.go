package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hupe1980/streamscope/model"
)

// Directory and relationship write paths.

// AddPerson registers a person.
func (d *DB) AddPerson(ctx context.Context, id model.EntityID, accountName string) error {
	return d.exec(ctx, `INSERT INTO people (id, account_name) VALUES (?, ?)`, int64(id), accountName)
}

// AddGroup registers a group. Activities posted to a private group are
// only visible to its members.
func (d *DB) AddGroup(ctx context.Context, id model.EntityID, shortName string, private bool) error {
	return d.exec(ctx, `INSERT INTO groups (id, short_name, private) VALUES (?, ?, ?)`, int64(id), shortName, private)
}

// AddOrganization registers an organization.
func (d *DB) AddOrganization(ctx context.Context, id model.EntityID, shortName string) error {
	return d.exec(ctx, `INSERT INTO organizations (id, short_name) VALUES (?, ?)`, int64(id), shortName)
}

// AddApplication registers an application.
func (d *DB) AddApplication(ctx context.Context, id model.EntityID, name string) error {
	return d.exec(ctx, `INSERT INTO applications (id, name) VALUES (?, ?)`, int64(id), name)
}

// AddOrgDescendant records descendant as part of ancestor's subtree. The
// closure table is maintained by the directory side; recursive org queries
// read it.
func (d *DB) AddOrgDescendant(ctx context.Context, ancestor, descendant model.EntityID) error {
	return d.exec(ctx, `INSERT INTO org_descendants (ancestor_id, descendant_id) VALUES (?, ?)`,
		int64(ancestor), int64(descendant))
}

// Follow subscribes a person to a person's or group's stream.
func (d *DB) Follow(ctx context.Context, personID model.EntityID, streamType model.EntityType, streamID model.EntityID) error {
	return d.exec(ctx, `INSERT OR IGNORE INTO follows (person_id, stream_type, stream_id) VALUES (?, ?, ?)`,
		int64(personID), int(streamType), int64(streamID))
}

// JoinGroup adds a person to a group.
func (d *DB) JoinGroup(ctx context.Context, personID, groupID model.EntityID) error {
	return d.exec(ctx, `INSERT OR IGNORE INTO group_members (person_id, group_id) VALUES (?, ?)`,
		int64(personID), int64(groupID))
}

// SaveActivity adds an activity to a person's saved list.
func (d *DB) SaveActivity(ctx context.Context, personID model.EntityID, activityID model.ActivityID) error {
	return d.exec(ctx, `INSERT OR IGNORE INTO saved_activities (person_id, activity_id) VALUES (?, ?)`,
		int64(personID), int64(activityID))
}

// UnsaveActivity removes an activity from a person's saved list.
func (d *DB) UnsaveActivity(ctx context.Context, personID model.EntityID, activityID model.ActivityID) error {
	return d.exec(ctx, `DELETE FROM saved_activities WHERE person_id = ? AND activity_id = ?`,
		int64(personID), int64(activityID))
}

// Followers returns the people following the given stream.
func (d *DB) Followers(ctx context.Context, streamType model.EntityType, streamID model.EntityID) ([]model.EntityID, error) {
	return d.queryEntityIDs(ctx, `SELECT person_id FROM follows WHERE stream_type = ? AND stream_id = ?`,
		int(streamType), int64(streamID))
}

// GroupMembers returns the members of a group.
func (d *DB) GroupMembers(ctx context.Context, groupID model.EntityID) ([]model.EntityID, error) {
	return d.queryEntityIDs(ctx, `SELECT person_id FROM group_members WHERE group_id = ?`, int64(groupID))
}

// GroupPrivate reports whether a group is private. Unknown groups are
// treated as private.
func (d *DB) GroupPrivate(ctx context.Context, groupID model.EntityID) (bool, error) {
	var private bool
	err := d.db.QueryRowContext(ctx, `SELECT private FROM groups WHERE id = ?`, int64(groupID)).Scan(&private)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("group privacy: %w", err)
	}
	return private, nil
}

func (d *DB) queryEntityIDs(ctx context.Context, query string, args ...any) ([]model.EntityID, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entity ids: %w", err)
	}
	defer rows.Close()

	var out []model.EntityID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan entity id: %w", err)
		}
		out = append(out, model.EntityID(id))
	}
	return out, rows.Err()
}

func (d *DB) exec(ctx context.Context, query string, args ...any) error {
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}
