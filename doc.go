// Package streamscope retrieves activity streams: it parses JSON stream
// requests, resolves symbolic scope names against the entity directory,
// fans the query out to cache, relational and full-text data sources,
// merges the answers newest-first and security-trims the result for the
// requesting user.
//
// # Basic usage
//
//	db, _ := persist.Open("streams.db")
//	store := persist.New(db, nil)
//	_ = store.Migrate(ctx)
//
//	engine := streamscope.New(store, bm25.New(),
//		streamscope.WithLogLevel(slog.LevelInfo),
//	)
//	defer engine.Close()
//
//	ids, err := engine.FetchIDs(ctx,
//		[]byte(`{"count":10,"followedBy":["jdoe"]}`), userID)
//
// Keyword queries route through the full-text index; combined with a
// scope clause they walk the index and the scope list together so only
// activities present in both are returned.
package streamscope
