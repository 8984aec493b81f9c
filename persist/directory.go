package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/transform"
)

// Directory implementation. Symbolic names arrive in stream queries and
// are resolved to entity IDs before any data source runs.

var _ transform.Directory = (*DB)(nil)

func (d *DB) lookupID(ctx context.Context, query, name string) (model.EntityID, error) {
	var id int64
	err := d.db.QueryRowContext(ctx, query, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%q: %w", name, transform.ErrUnknownEntity)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %q: %w", name, err)
	}
	return model.EntityID(id), nil
}

// PersonID resolves a person's account name.
func (d *DB) PersonID(ctx context.Context, accountName string) (model.EntityID, error) {
	return d.lookupID(ctx, `SELECT id FROM people WHERE account_name = ?`, accountName)
}

// GroupID resolves a group's short name.
func (d *DB) GroupID(ctx context.Context, shortName string) (model.EntityID, error) {
	return d.lookupID(ctx, `SELECT id FROM groups WHERE short_name = ?`, shortName)
}

// OrgID resolves an organization's short name.
func (d *DB) OrgID(ctx context.Context, shortName string) (model.EntityID, error) {
	return d.lookupID(ctx, `SELECT id FROM organizations WHERE short_name = ?`, shortName)
}

// AppID resolves an application's name.
func (d *DB) AppID(ctx context.Context, name string) (model.EntityID, error) {
	return d.lookupID(ctx, `SELECT id FROM applications WHERE name = ?`, name)
}
