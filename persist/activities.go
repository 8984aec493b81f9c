package persist

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/streamscope/model"
)

// InsertActivity stores a new activity row.
func (d *DB) InsertActivity(ctx context.Context, a model.Activity) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO activities (id, author_id, recipient_id, recipient_type, org_id, app_id, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int64(a.ID), int64(a.AuthorID), int64(a.RecipientID), int(a.RecipientType),
		int64(a.OrgID), int64(a.AppID), a.Content)
	if err != nil {
		return fmt.Errorf("insert activity %d: %w", a.ID, err)
	}
	return nil
}

// Activities hydrates full activity rows for the given IDs, preserving the
// input order. IDs with no row are silently skipped.
func (d *DB) Activities(ctx context.Context, idList []model.ActivityID) ([]model.Activity, error) {
	if len(idList) == 0 {
		return nil, nil
	}

	placeholders, args := inArgs(idList)
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, author_id, recipient_id, recipient_type, org_id, app_id, content
		FROM activities WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	byID := make(map[model.ActivityID]model.Activity, len(idList))
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.Activity, 0, len(byID))
	for _, id := range idList {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// ForEachActivity streams all activity rows, oldest first. Used to rebuild
// the full-text index.
func (d *DB) ForEachActivity(ctx context.Context, fn func(model.Activity) error) error {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, author_id, recipient_id, recipient_type, org_id, app_id, content
		FROM activities ORDER BY id ASC`)
	if err != nil {
		return fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return err
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return rows.Err()
}

// IDsByAuthors returns the newest activity IDs authored by any of the
// given people, descending, at most limit.
func (d *DB) IDsByAuthors(ctx context.Context, authors []model.EntityID, limit int) ([]model.ActivityID, error) {
	if len(authors) == 0 {
		return nil, nil
	}
	placeholders, args := inArgs(authors)
	args = append(args, limit)
	return d.queryIDs(ctx, fmt.Sprintf(`
		SELECT id FROM activities WHERE author_id IN (%s)
		ORDER BY id DESC LIMIT ?`, placeholders), args...)
}

// IDsByRecipients returns the newest activity IDs posted to any of the
// given streams, descending, at most limit.
func (d *DB) IDsByRecipients(ctx context.Context, recipients []model.EntityID, limit int) ([]model.ActivityID, error) {
	if len(recipients) == 0 {
		return nil, nil
	}
	placeholders, args := inArgs(recipients)
	args = append(args, limit)
	return d.queryIDs(ctx, fmt.Sprintf(`
		SELECT id FROM activities WHERE recipient_id IN (%s)
		ORDER BY id DESC LIMIT ?`, placeholders), args...)
}

// IDsByOrgs returns the newest activity IDs in any of the given
// organizations. When recursive is true, descendant organizations are
// included via the org_descendants closure table.
func (d *DB) IDsByOrgs(ctx context.Context, orgs []model.EntityID, recursive bool, limit int) ([]model.ActivityID, error) {
	if len(orgs) == 0 {
		return nil, nil
	}
	placeholders, args := inArgs(orgs)
	if recursive {
		args = append(args, args...)
		args = append(args, limit)
		return d.queryIDs(ctx, fmt.Sprintf(`
			SELECT id FROM activities
			WHERE org_id IN (%s)
			   OR org_id IN (SELECT descendant_id FROM org_descendants WHERE ancestor_id IN (%s))
			ORDER BY id DESC LIMIT ?`, placeholders, placeholders), args...)
	}
	args = append(args, limit)
	return d.queryIDs(ctx, fmt.Sprintf(`
		SELECT id FROM activities WHERE org_id IN (%s)
		ORDER BY id DESC LIMIT ?`, placeholders), args...)
}

// IDsByApps returns the newest activity IDs posted by any of the given
// applications, descending, at most limit.
func (d *DB) IDsByApps(ctx context.Context, apps []model.EntityID, limit int) ([]model.ActivityID, error) {
	if len(apps) == 0 {
		return nil, nil
	}
	placeholders, args := inArgs(apps)
	args = append(args, limit)
	return d.queryIDs(ctx, fmt.Sprintf(`
		SELECT id FROM activities WHERE app_id IN (%s)
		ORDER BY id DESC LIMIT ?`, placeholders), args...)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (model.Activity, error) {
	var (
		a             model.Activity
		id, author    int64
		recipient     int64
		recipientType int
		orgID, appID  int64
	)
	if err := row.Scan(&id, &author, &recipient, &recipientType, &orgID, &appID, &a.Content); err != nil {
		return model.Activity{}, fmt.Errorf("scan activity: %w", err)
	}
	a.ID = model.ActivityID(id)
	a.AuthorID = model.EntityID(author)
	a.RecipientID = model.EntityID(recipient)
	a.RecipientType = model.EntityType(recipientType)
	a.OrgID = model.EntityID(orgID)
	a.AppID = model.EntityID(appID)
	return a, nil
}

func inArgs[T ~int64](vals []T) (string, []any) {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = int64(v)
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", "), args
}
