package streamscope

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/streamscope/blobstore"
	"github.com/hupe1980/streamscope/collide"
	"github.com/hupe1980/streamscope/fetch"
	"github.com/hupe1980/streamscope/internal/ids"
	"github.com/hupe1980/streamscope/lexical"
	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/persist"
	"github.com/hupe1980/streamscope/query"
	"github.com/hupe1980/streamscope/source"
	"github.com/hupe1980/streamscope/streamlist"
	"github.com/hupe1980/streamscope/transform"
)

// Engine composes the stream pipeline: request parsing, name resolution,
// data source fan-out, result merging, security trimming and keyword
// search scoping.
type Engine struct {
	db       *persist.DB
	index    lexical.Index
	lists    *streamlist.Store
	trimmer  *streamlist.Trimmer
	registry *transform.Registry
	sources  source.Multi
	scopers  *fetch.ScoperFactory

	logger  *Logger
	metrics MetricsCollector
	opts    options
}

// New creates an engine over the relational store and full-text index.
func New(db *persist.DB, index lexical.Index, optFns ...Option) *Engine {
	o := applyOptions(optFns)

	storeOpts := append([]streamlist.StoreOption{
		streamlist.WithLogger(o.logger.Logger),
	}, o.storeOptions...)
	lists := streamlist.NewStore(db, storeOpts...)

	sources := source.Multi{
		source.NewCacheDataSource(lists, o.safetyCap, o.logger.Logger),
		source.NewRelationalDataSource(db, o.safetyCap, o.logger.Logger),
		source.NewFullTextDataSource(index, o.safetyCap, o.logger.Logger),
	}
	sources = append(sources, o.extraSources...)

	return &Engine{
		db:       db,
		index:    index,
		lists:    lists,
		trimmer:  streamlist.NewTrimmer(lists),
		registry: transform.NewRegistry(db),
		sources:  sources,
		scopers:  fetch.NewScoperFactory(o.scopePageSize),
		logger:   o.logger,
		metrics:  o.metrics,
		opts:     o,
	}
}

// Lists exposes the stream-list store, e.g. for explicit refreshes.
func (e *Engine) Lists() *streamlist.Store { return e.lists }

// Close releases the full-text index.
func (e *Engine) Close() error {
	return e.index.Close()
}

// FetchIDs runs a JSON stream request for userID and returns the matching
// activity IDs, security trimmed, at most the requested count.
func (e *Engine) FetchIDs(ctx context.Context, request []byte, userID model.EntityID) ([]model.ActivityID, error) {
	started := time.Now()

	q, err := query.Parse(request)
	if err != nil {
		err = translateError(err)
		e.metrics.RecordFetch(0, 0, time.Since(started), err)
		e.logger.LogFetch(ctx, int64(userID), 0, 0, 0, err)
		return nil, err
	}

	out, passes, err := e.runQuery(ctx, q, userID)
	err = translateError(err)
	e.metrics.RecordFetch(q.Count, passes, time.Since(started), err)
	e.logger.LogFetch(ctx, int64(userID), q.Count, len(out), passes, err)
	return out, err
}

// Fetch runs a JSON stream request and hydrates the matching activities
// from the relational store, preserving result order.
func (e *Engine) Fetch(ctx context.Context, request []byte, userID model.EntityID) ([]model.Activity, error) {
	idList, err := e.FetchIDs(ctx, request, userID)
	if err != nil {
		return nil, err
	}
	return e.db.Activities(ctx, idList)
}

func (e *Engine) runQuery(ctx context.Context, q *query.Query, userID model.EntityID) ([]model.ActivityID, int, error) {
	resolved, err := e.registry.ResolveQuery(ctx, q, userID)
	if err != nil {
		return nil, 0, err
	}

	if resolved.Keywords() != "" {
		return e.searchIDs(ctx, resolved, userID)
	}
	return e.mergeIDs(ctx, resolved, userID)
}

// mergeIDs is the recency path: fan the query out to the data sources,
// merge the handled results, window and trim. Trimming can thin the page
// below the requested count, so each pass doubles the candidate batch
// until the page fills or the sources are exhausted.
func (e *Engine) mergeIDs(ctx context.Context, q *query.Query, userID model.EntityID) ([]model.ActivityID, int, error) {
	batch := q.Count
	for pass := 1; ; pass++ {
		budget := batch
		if q.HasUnknown() || budget > e.opts.safetyCap {
			budget = e.opts.safetyCap
		}

		merged, err := e.gather(ctx, q, userID, budget)
		if err != nil {
			return nil, pass, err
		}
		windowed := ids.Window(merged, q.MinID, q.MaxID)
		trimmed, err := e.trimmer.Trim(ctx, windowed, userID)
		if err != nil {
			return nil, pass, err
		}

		exhausted := len(merged) < budget || budget >= e.opts.safetyCap
		if len(trimmed) >= q.Count || exhausted || pass >= e.opts.maxPasses {
			if len(trimmed) > q.Count {
				trimmed = trimmed[:q.Count]
			}
			return trimmed, pass, nil
		}
		batch *= 2
	}
}

// gather fans the query out to all data sources concurrently and folds
// the handled results into one budgeted union. Fold order follows source
// registration order, so results are deterministic.
func (e *Engine) gather(ctx context.Context, q *query.Query, userID model.EntityID, budget int) ([]model.ActivityID, error) {
	results := make([]source.Result, len(e.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, ds := range e.sources {
		g.Go(func() error {
			r, err := ds.Fetch(gctx, q, userID)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var lists [][]model.ActivityID
	for _, r := range results {
		if r.Handled {
			lists = append(lists, r.IDs)
		}
	}
	return collide.Fold(budget, lists...), nil
}

// searchIDs is the keyword path. An unscoped search pages the index
// directly; a scoped search walks the index and the scope list with the
// dual-cursor scoper so only IDs present in both surfaces.
func (e *Engine) searchIDs(ctx context.Context, q *query.Query, userID model.EntityID) ([]model.ActivityID, int, error) {
	searchQuery := source.BuildSearchQuery(q.Keywords())

	scopeQ := *q
	scopeQ.Clauses = nil
	for _, c := range q.Clauses {
		if c.Kind != query.ClauseKeywords && c.Kind != query.ClauseUnknown {
			scopeQ.Clauses = append(scopeQ.Clauses, c)
		}
	}

	if q.SortBy == query.SortRelevance {
		return e.searchRanked(ctx, q, &scopeQ, searchQuery, userID)
	}

	minID := q.MinID
	if minID > 0 {
		// The query bound is exclusive, the search fetcher's is inclusive.
		minID++
	}
	raw := fetch.NewSearchPageFetcher(e.index, searchQuery, q.MaxID, minID)

	var fetcher fetch.PageFetcher[model.ActivityID] = raw
	if len(scopeQ.Clauses) > 0 {
		allowed, err := e.allowedFetcher(ctx, &scopeQ, userID)
		if err != nil {
			return nil, 0, err
		}
		fetcher = e.scopers.Build(raw, allowed, q.MaxID)
	}

	var out []model.ActivityID
	start := 0
	for pass := 1; ; pass++ {
		searchStarted := time.Now()
		page, err := fetcher.FetchPage(ctx, start, q.Count)
		e.metrics.RecordSearch(time.Since(searchStarted), err)
		if errors.Is(err, lexical.ErrQueryGrammar) {
			e.logger.Warn("rejected search query", "query", searchQuery, "error", err)
			return out, pass, nil
		}
		if err != nil {
			return nil, pass, err
		}

		trimmed, err := e.trimmer.Trim(ctx, page, userID)
		if err != nil {
			return nil, pass, err
		}
		out = append(out, trimmed...)

		if len(out) >= q.Count {
			return out[:q.Count], pass, nil
		}
		if len(page) < q.Count || pass >= e.opts.maxPasses {
			return out, pass, nil
		}
		start += len(page)
	}
}

// searchRanked serves relevance-sorted keyword queries. Relevance order
// cannot flow through the ID-ordered scoper, so scope membership is
// checked against the materialized scope list instead.
func (e *Engine) searchRanked(ctx context.Context, q, scopeQ *query.Query, searchQuery string, userID model.EntityID) ([]model.ActivityID, int, error) {
	var allowed []model.ActivityID
	scoped := len(scopeQ.Clauses) > 0
	if scoped {
		var err error
		allowed, err = e.gather(ctx, scopeQ, userID, e.opts.safetyCap)
		if err != nil {
			return nil, 0, err
		}
	}

	limit := q.Count
	for pass := 1; ; pass++ {
		if limit > e.opts.safetyCap {
			limit = e.opts.safetyCap
		}
		searchStarted := time.Now()
		ranked, err := e.index.SearchRanked(ctx, searchQuery, 0, limit)
		e.metrics.RecordSearch(time.Since(searchStarted), err)
		if errors.Is(err, lexical.ErrQueryGrammar) {
			e.logger.Warn("rejected search query", "query", searchQuery, "error", err)
			return nil, pass, nil
		}
		if err != nil {
			return nil, pass, err
		}

		candidates := ranked[:0:0]
		for _, id := range ranked {
			if id <= q.MinID || id >= q.MaxID {
				continue
			}
			if scoped && !ids.Contains(allowed, id) {
				continue
			}
			candidates = append(candidates, id)
		}
		trimmed, err := e.trimmer.Trim(ctx, candidates, userID)
		if err != nil {
			return nil, pass, err
		}

		if len(trimmed) >= q.Count || len(ranked) < limit || limit >= e.opts.safetyCap || pass >= e.opts.maxPasses {
			if len(trimmed) > q.Count {
				trimmed = trimmed[:q.Count]
			}
			return trimmed, pass, nil
		}
		limit *= 2
	}
}

// allowedFetcher builds the scope-list side of the scoper. A single
// list-backed clause pages its cached list lazily; anything else is
// materialized through the data sources up front.
func (e *Engine) allowedFetcher(ctx context.Context, scopeQ *query.Query, userID model.EntityID) (fetch.PageFetcher[model.ActivityID], error) {
	if len(scopeQ.Clauses) == 1 && len(scopeQ.Clauses[0].Entities) == 1 {
		if key, ok := listKey(scopeQ.Clauses[0].Kind, scopeQ.Clauses[0].Entities[0]); ok {
			return e.lists.PageFetcher(key), nil
		}
	}
	merged, err := e.gather(ctx, scopeQ, userID, e.opts.safetyCap)
	if err != nil {
		return nil, err
	}
	return fetch.NewListPageFetcher(merged), nil
}

func listKey(kind query.ClauseKind, id model.EntityID) (string, bool) {
	switch kind {
	case query.ClauseFollowedBy:
		return streamlist.FollowedByKey(id), true
	case query.ClauseSavedBy:
		return streamlist.SavedByKey(id), true
	case query.ClauseJoinedGroups:
		return streamlist.JoinedGroupsKey(id), true
	case query.ClauseRecipient:
		return streamlist.RecipientKey(id), true
	case query.ClauseAuthoredBy:
		return streamlist.AuthoredByKey(id), true
	default:
		return "", false
	}
}

// Post stores a new activity, indexes it and folds it into the warm
// stream lists it belongs to.
func (e *Engine) Post(ctx context.Context, a model.Activity) error {
	started := time.Now()
	err := e.post(ctx, a)
	e.metrics.RecordPost(time.Since(started), err)
	e.logger.LogPost(ctx, int64(a.ID), err)
	return err
}

func (e *Engine) post(ctx context.Context, a model.Activity) error {
	if err := e.db.InsertActivity(ctx, a); err != nil {
		return err
	}
	if err := e.index.Add(a); err != nil {
		return err
	}

	e.lists.Add(streamlist.RecipientKey(a.RecipientID), a.ID)
	e.lists.Add(streamlist.AuthoredByKey(a.AuthorID), a.ID)

	followers, err := e.db.Followers(ctx, a.RecipientType, a.RecipientID)
	if err != nil {
		return err
	}
	for _, p := range followers {
		e.lists.Add(streamlist.FollowedByKey(p), a.ID)
	}

	if a.RecipientType == model.EntityGroup {
		members, err := e.db.GroupMembers(ctx, a.RecipientID)
		if err != nil {
			return err
		}
		for _, m := range members {
			e.lists.Add(streamlist.JoinedGroupsKey(m), a.ID)
		}
		private, err := e.db.GroupPrivate(ctx, a.RecipientID)
		if err != nil {
			return err
		}
		if private {
			for _, m := range members {
				e.lists.Add(streamlist.VisibleKey(m), a.ID)
			}
			return nil
		}
	}

	e.lists.Add(streamlist.EveryoneKey, a.ID)
	e.lists.AddMatching(streamlist.IsVisibleKey, a.ID)
	return nil
}

// Save adds an activity to the user's saved list.
func (e *Engine) Save(ctx context.Context, userID model.EntityID, id model.ActivityID) error {
	if err := e.db.SaveActivity(ctx, userID, id); err != nil {
		return err
	}
	e.lists.Add(streamlist.SavedByKey(userID), id)
	return nil
}

// Unsave removes an activity from the user's saved list.
func (e *Engine) Unsave(ctx context.Context, userID model.EntityID, id model.ActivityID) error {
	if err := e.db.UnsaveActivity(ctx, userID, id); err != nil {
		return err
	}
	e.lists.Invalidate(streamlist.SavedByKey(userID))
	return nil
}

// Follow subscribes a person to a stream and invalidates their composite
// followed list.
func (e *Engine) Follow(ctx context.Context, userID model.EntityID, streamType model.EntityType, streamID model.EntityID) error {
	if err := e.db.Follow(ctx, userID, streamType, streamID); err != nil {
		return err
	}
	e.lists.Invalidate(streamlist.FollowedByKey(userID))
	return nil
}

// JoinGroup adds a person to a group. Membership changes what the person
// may see, so the visibility set is invalidated too.
func (e *Engine) JoinGroup(ctx context.Context, userID, groupID model.EntityID) error {
	if err := e.db.JoinGroup(ctx, userID, groupID); err != nil {
		return err
	}
	e.lists.Invalidate(streamlist.JoinedGroupsKey(userID))
	e.lists.Invalidate(streamlist.VisibleKey(userID))
	return nil
}

// RebuildIndex re-indexes every stored activity. Run at startup when the
// index is in-memory.
func (e *Engine) RebuildIndex(ctx context.Context) error {
	return e.db.ForEachActivity(ctx, func(a model.Activity) error {
		return e.index.Add(a)
	})
}

// SaveSnapshot persists the warm stream lists to a blob store.
func (e *Engine) SaveSnapshot(ctx context.Context, blobs blobstore.Store, c blobstore.Compression, name string) error {
	err := streamlist.NewSnapshotter(e.lists, blobs, c).Save(ctx, name)
	e.logger.LogSnapshot(ctx, name, err)
	return err
}

// LoadSnapshot restores stream lists from a blob store.
func (e *Engine) LoadSnapshot(ctx context.Context, blobs blobstore.Store, name string) error {
	return streamlist.NewSnapshotter(e.lists, blobs, blobstore.CompressionNone).Load(ctx, name)
}
