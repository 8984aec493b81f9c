package source

import (
	"context"
	"log/slog"

	"github.com/hupe1980/streamscope/collide"
	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/query"
	"github.com/hupe1980/streamscope/streamlist"
)

// CacheDataSource serves clauses that map onto precomputed composite
// stream lists: followedBy, savedBy, joinedGroups, recipient and
// authoredBy. Each resolved entity becomes one stream key; multiple keys
// for one query are unioned under the merge budget.
type CacheDataSource struct {
	lists    *streamlist.Store
	maxItems int
	logger   *slog.Logger
}

// NewCacheDataSource creates a cache-backed data source. maxItems bounds
// the merged list.
func NewCacheDataSource(lists *streamlist.Store, maxItems int, logger *slog.Logger) *CacheDataSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheDataSource{lists: lists, maxItems: maxItems, logger: logger}
}

var _ DataSource = (*CacheDataSource)(nil)

// Fetch unions the cached lists for every clause the cache can serve.
func (s *CacheDataSource) Fetch(ctx context.Context, q *query.Query, userID model.EntityID) (Result, error) {
	var keys []string
	for _, c := range q.Clauses {
		switch c.Kind {
		case query.ClauseFollowedBy:
			for _, id := range c.Entities {
				keys = append(keys, streamlist.FollowedByKey(id))
			}
		case query.ClauseSavedBy:
			for _, id := range c.Entities {
				keys = append(keys, streamlist.SavedByKey(id))
			}
		case query.ClauseJoinedGroups:
			for _, id := range c.Entities {
				keys = append(keys, streamlist.JoinedGroupsKey(id))
			}
		case query.ClauseRecipient:
			for _, id := range c.Entities {
				keys = append(keys, streamlist.RecipientKey(id))
			}
		case query.ClauseAuthoredBy:
			for _, id := range c.Entities {
				keys = append(keys, streamlist.AuthoredByKey(id))
			}
		}
	}
	if len(keys) == 0 {
		return Result{}, nil
	}

	lists := make([][]model.ActivityID, 0, len(keys))
	for _, key := range keys {
		list, err := s.lists.IDs(ctx, key)
		if err != nil {
			return Result{}, err
		}
		lists = append(lists, list)
	}

	merged := collide.Fold(s.maxItems, lists...)
	if merged == nil {
		merged = []model.ActivityID{}
	}
	s.logger.Debug("cache source answered", "keys", len(keys), "ids", len(merged))
	return Result{Handled: true, IDs: merged}, nil
}
