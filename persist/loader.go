package persist

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/streamlist"
)

// Loader implementation. Stream-list cache misses land here; each key
// maps to one query against the relationship tables. Results are returned
// unsorted, the cache normalizes them to descending order.

var _ streamlist.Loader = (*DB)(nil)

// LoadIDs computes the ID list for a stream key.
func (d *DB) LoadIDs(ctx context.Context, key string) ([]model.ActivityID, error) {
	if key == streamlist.EveryoneKey {
		return d.queryIDs(ctx, `
			SELECT a.id FROM activities a
			WHERE NOT EXISTS (
				SELECT 1 FROM groups g
				WHERE a.recipient_type = ? AND g.id = a.recipient_id AND g.private = 1
			)
			ORDER BY a.id DESC`,
			int(model.EntityGroup))
	}

	kind, id, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "followedBy":
		return d.queryIDs(ctx, `
			SELECT a.id FROM activities a
			JOIN follows f ON f.stream_type = a.recipient_type AND f.stream_id = a.recipient_id
			WHERE f.person_id = ?
			ORDER BY a.id DESC`,
			id)

	case "joinedGroups":
		return d.queryIDs(ctx, `
			SELECT a.id FROM activities a
			JOIN group_members m ON m.group_id = a.recipient_id
			WHERE a.recipient_type = ? AND m.person_id = ?
			ORDER BY a.id DESC`,
			int(model.EntityGroup), id)

	case "savedBy":
		return d.queryIDs(ctx, `
			SELECT activity_id FROM saved_activities
			WHERE person_id = ?
			ORDER BY activity_id DESC`,
			id)

	case "authoredBy":
		return d.queryIDs(ctx, `
			SELECT id FROM activities
			WHERE author_id = ?
			ORDER BY id DESC`,
			id)

	case "recipient":
		return d.queryIDs(ctx, `
			SELECT id FROM activities
			WHERE recipient_id = ?
			ORDER BY id DESC`,
			id)

	case "visible":
		// Public activities plus private-group activities for groups the
		// person is a member of.
		return d.queryIDs(ctx, `
			SELECT a.id FROM activities a
			WHERE NOT EXISTS (
				SELECT 1 FROM groups g
				WHERE a.recipient_type = ? AND g.id = a.recipient_id AND g.private = 1
			)
			UNION
			SELECT a.id FROM activities a
			JOIN groups g ON g.id = a.recipient_id AND g.private = 1
			JOIN group_members m ON m.group_id = g.id
			WHERE a.recipient_type = ? AND m.person_id = ?
			ORDER BY 1 DESC`,
			int(model.EntityGroup), int(model.EntityGroup), id)

	default:
		return nil, fmt.Errorf("unknown stream key %q", key)
	}
}

func splitKey(key string) (kind string, id int64, err error) {
	kind, rest, ok := strings.Cut(key, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed stream key %q", key)
	}
	id, err = strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed stream key %q: %w", key, err)
	}
	return kind, id, nil
}

func (d *DB) queryIDs(ctx context.Context, query string, args ...any) ([]model.ActivityID, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stream list: %w", err)
	}
	defer rows.Close()

	var out []model.ActivityID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan activity id: %w", err)
		}
		out = append(out, model.ActivityID(id))
	}
	return out, rows.Err()
}
