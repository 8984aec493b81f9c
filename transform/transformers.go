package transform

import (
	"context"
	"fmt"

	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/query"
)

// personTransformer resolves account names to person IDs. Serves followedBy
// and authoredBy.
type personTransformer struct {
	dir Directory
}

func (t personTransformer) Transform(ctx context.Context, c query.Clause, _ model.EntityID) ([]model.EntityID, error) {
	ids := make([]model.EntityID, 0, len(c.Names))
	for _, name := range c.Names {
		id, err := t.dir.PersonID(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s %q: %w", c.Kind, name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// savedByTransformer resolves an account name to a person ID and verifies
// it is the requesting user. Saved lists are private; the clause is not
// bypassable by supplying another user's account name.
type savedByTransformer struct {
	dir Directory
}

func (t savedByTransformer) Transform(ctx context.Context, c query.Clause, userID model.EntityID) ([]model.EntityID, error) {
	if len(c.Names) != 1 {
		return nil, fmt.Errorf("%w: savedBy takes exactly one account", ErrNotAuthorized)
	}
	id, err := t.dir.PersonID(ctx, c.Names[0])
	if err != nil {
		return nil, fmt.Errorf("resolve savedBy %q: %w", c.Names[0], err)
	}
	if id != userID {
		return nil, fmt.Errorf("%w: savedBy %q is not the requesting user", ErrNotAuthorized, c.Names[0])
	}
	return []model.EntityID{id}, nil
}

// recipientTransformer resolves stream recipients, which may be people or
// groups. A person match wins; group short names are tried second.
type recipientTransformer struct {
	dir Directory
}

func (t recipientTransformer) Transform(ctx context.Context, c query.Clause, _ model.EntityID) ([]model.EntityID, error) {
	ids := make([]model.EntityID, 0, len(c.Names))
	for _, name := range c.Names {
		id, err := t.dir.PersonID(ctx, name)
		if err != nil {
			id, err = t.dir.GroupID(ctx, name)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve recipient %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// orgTransformer resolves organization short names. Serves organization and
// parentOrg.
type orgTransformer struct {
	dir Directory
}

func (t orgTransformer) Transform(ctx context.Context, c query.Clause, _ model.EntityID) ([]model.EntityID, error) {
	ids := make([]model.EntityID, 0, len(c.Names))
	for _, name := range c.Names {
		id, err := t.dir.OrgID(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s %q: %w", c.Kind, name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type appTransformer struct {
	dir Directory
}

func (t appTransformer) Transform(ctx context.Context, c query.Clause, _ model.EntityID) ([]model.EntityID, error) {
	ids := make([]model.EntityID, 0, len(c.Names))
	for _, name := range c.Names {
		id, err := t.dir.AppID(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve fromApp %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type groupTransformer struct {
	dir Directory
}

func (t groupTransformer) Transform(ctx context.Context, c query.Clause, _ model.EntityID) ([]model.EntityID, error) {
	ids := make([]model.EntityID, 0, len(c.Names))
	for _, name := range c.Names {
		id, err := t.dir.GroupID(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve joinedGroups %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
