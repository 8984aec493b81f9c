package fetch

import (
	"context"

	"github.com/hupe1980/streamscope/model"
)

// Searcher executes a full-text query and returns matching activity IDs in
// descending ID order. It is the fetch-side view of the lexical index; the
// engine has its own result-window paging idiom, which SearchPageFetcher
// maps onto the PageFetcher contract.
type Searcher interface {
	// SearchIDs returns up to limit IDs matching query, in descending ID
	// order, skipping the first offset matches.
	SearchIDs(ctx context.Context, query string, offset, limit int) ([]model.ActivityID, error)
}

// SearchPageFetcher adapts a full-text query execution to the PageFetcher
// contract, additionally enforcing a last-seen-ID exclusive upper bound and
// a minimum-ID inclusive lower bound for incremental polling.
//
// The query engine cannot filter by ID value directly, so the fetcher
// requests successively larger result windows and filters client-side,
// terminating once enough qualifying IDs are collected or the engine
// reports no more results.
type SearchPageFetcher struct {
	searcher Searcher
	query    string
	// lastSeenID is an exclusive upper bound; zero or negative means no
	// bound. minID is an inclusive lower bound.
	lastSeenID model.ActivityID
	minID      model.ActivityID
}

// NewSearchPageFetcher creates a fetcher for the given query string.
// lastSeenID bounds results exclusively from above (pass
// model.MaxActivityID for no bound); minID bounds them inclusively from
// below (pass 0 for no bound).
func NewSearchPageFetcher(searcher Searcher, query string, lastSeenID, minID model.ActivityID) *SearchPageFetcher {
	if lastSeenID <= 0 {
		lastSeenID = model.MaxActivityID
	}
	return &SearchPageFetcher{
		searcher:   searcher,
		query:      query,
		lastSeenID: lastSeenID,
		minID:      minID,
	}
}

// FetchPage returns the requested window of qualifying IDs. Each pass
// doubles the window requested from the engine, mirroring the batch growth
// of the scoping walk: fetch, filter, loop if short.
func (f *SearchPageFetcher) FetchPage(ctx context.Context, start, pageSize int) ([]model.ActivityID, error) {
	if err := ValidatePageArgs(start, pageSize); err != nil {
		return nil, err
	}

	need := start + pageSize
	window := need

	for {
		raw, err := f.searcher.SearchIDs(ctx, f.query, 0, window)
		if err != nil {
			return nil, err
		}

		qualifying := raw[:0:0]
		for _, id := range raw {
			if id < f.lastSeenID && id >= f.minID {
				qualifying = append(qualifying, id)
			}
		}

		if len(qualifying) >= need {
			return qualifying[start:need], nil
		}
		if len(raw) < window {
			// Engine exhausted; a short page is a legitimate outcome.
			return sliceWindow(qualifying, start), nil
		}
		window *= 2
	}
}
