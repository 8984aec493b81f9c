package source

import (
	"context"
	"log/slog"

	"github.com/hupe1980/streamscope/collide"
	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/query"
)

// Relational answers the clause-driven ID queries no precomputed list
// covers. Implemented by persist.DB.
type Relational interface {
	IDsByOrgs(ctx context.Context, orgs []model.EntityID, recursive bool, limit int) ([]model.ActivityID, error)
	IDsByApps(ctx context.Context, apps []model.EntityID, limit int) ([]model.ActivityID, error)
}

// RelationalDataSource serves the organization, parentOrg and fromApp
// clauses straight from the relational store. These scopes are too
// numerous to keep warm as cached lists, so each query hits an indexed
// ID-ordered scan instead.
type RelationalDataSource struct {
	db       Relational
	maxItems int
	logger   *slog.Logger
}

// NewRelationalDataSource creates a relational data source. maxItems
// bounds each clause's scan and the merged result.
func NewRelationalDataSource(db Relational, maxItems int, logger *slog.Logger) *RelationalDataSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationalDataSource{db: db, maxItems: maxItems, logger: logger}
}

var _ DataSource = (*RelationalDataSource)(nil)

// Fetch unions the relational answers for every clause it serves.
func (s *RelationalDataSource) Fetch(ctx context.Context, q *query.Query, _ model.EntityID) (Result, error) {
	var lists [][]model.ActivityID
	handled := false

	for _, c := range q.Clauses {
		switch c.Kind {
		case query.ClauseOrganization, query.ClauseParentOrg:
			recursive := c.Kind == query.ClauseParentOrg
			ids, err := s.db.IDsByOrgs(ctx, c.Entities, recursive, s.maxItems)
			if err != nil {
				return Result{}, err
			}
			handled = true
			lists = append(lists, ids)
		case query.ClauseFromApp:
			ids, err := s.db.IDsByApps(ctx, c.Entities, s.maxItems)
			if err != nil {
				return Result{}, err
			}
			handled = true
			lists = append(lists, ids)
		}
	}
	if !handled {
		return Result{}, nil
	}

	merged := collide.Fold(s.maxItems, lists...)
	if merged == nil {
		merged = []model.ActivityID{}
	}
	s.logger.Debug("relational source answered", "clauses", len(lists), "ids", len(merged))
	return Result{Handled: true, IDs: merged}, nil
}
