package fetch

import (
	"context"
	"math"

	"github.com/hupe1980/streamscope/model"
)

// DefaultScopePageSize is the internal page size used against the raw and
// allowed sources when none is configured. It is independent of the caller's
// requested page size and exists purely as an I/O-efficiency knob.
const DefaultScopePageSize = 500

// ScopedPageFetcher composes a broad raw result fetcher (typically full-text
// search over all activities) with a narrower allowed-ID fetcher (e.g. the
// cached ID list of a followed stream). It yields only IDs present in both,
// in descending order, without materializing either source.
//
// Both sources must be strictly descending with no duplicates; the advance
// heuristic depends on it. The fetcher holds no mutable state across calls
// and is safe for concurrent use.
type ScopedPageFetcher struct {
	raw             PageFetcher[model.ActivityID]
	allowed         PageFetcher[model.ActivityID]
	rawPageSize     int
	allowedPageSize int

	// maxID is an exclusive upper bound on returned IDs, implementing
	// "older than the last item the client already has".
	maxID model.ActivityID
}

// ScoperFactory builds ScopedPageFetchers that share the configured internal
// page sizes. One factory is typically created at wiring time and reused for
// every request.
type ScoperFactory struct {
	rawPageSize     int
	allowedPageSize int
}

// NewScoperFactory creates a factory with the given internal page size for
// both sources. A non-positive size falls back to DefaultScopePageSize.
func NewScoperFactory(pageSize int) *ScoperFactory {
	if pageSize <= 0 {
		pageSize = DefaultScopePageSize
	}
	return &ScoperFactory{rawPageSize: pageSize, allowedPageSize: pageSize}
}

// NewScoperFactorySizes creates a factory with independently tuned page
// sizes for the raw and allowed sources.
func NewScoperFactorySizes(rawPageSize, allowedPageSize int) *ScoperFactory {
	if rawPageSize <= 0 {
		rawPageSize = DefaultScopePageSize
	}
	if allowedPageSize <= 0 {
		allowedPageSize = DefaultScopePageSize
	}
	return &ScoperFactory{rawPageSize: rawPageSize, allowedPageSize: allowedPageSize}
}

// Build wraps raw and allowed into a ScopedPageFetcher. maxID is an
// exclusive upper bound on returned IDs; pass model.MaxActivityID for no
// bound.
func (f *ScoperFactory) Build(raw, allowed PageFetcher[model.ActivityID], maxID model.ActivityID) *ScopedPageFetcher {
	return &ScopedPageFetcher{
		raw:             raw,
		allowed:         allowed,
		rawPageSize:     f.rawPageSize,
		allowedPageSize: f.allowedPageSize,
		maxID:           maxID,
	}
}

// scopeCursor is the per-call walk state over one source. Offsets always
// replay from zero for a fresh FetchPage call; neither source supports
// random access into an arbitrary point without having walked there.
type scopeCursor struct {
	fetcher  PageFetcher[model.ActivityID]
	pageSize int
	offset   int
	page     []model.ActivityID
	// done is set once the source returns a page shorter than requested.
	done bool
}

func (c *scopeCursor) fetch(ctx context.Context) error {
	page, err := c.fetcher.FetchPage(ctx, c.offset, c.pageSize)
	if err != nil {
		return err
	}
	c.page = page
	c.done = len(page) < c.pageSize
	c.offset += len(page)
	return nil
}

// tail returns the smallest (last) value of the current page, or MinInt64
// for an empty page.
func (c *scopeCursor) tail() model.ActivityID {
	if len(c.page) == 0 {
		return model.ActivityID(math.MinInt64)
	}
	return c.page[len(c.page)-1]
}

// FetchPage assembles the requested window of the intersection of the raw
// and allowed streams.
//
// The walk keeps one cursor per source. Each iteration intersects the two
// current pages, then advances the cursor whose tail value is larger: since
// both lists are descending, that page can no longer match anything the
// other source has yet to produce. When one source is exhausted the walk
// continues only while the other source's frontier could still overlap the
// exhausted source's final page.
func (s *ScopedPageFetcher) FetchPage(ctx context.Context, start, pageSize int) ([]model.ActivityID, error) {
	if err := ValidatePageArgs(start, pageSize); err != nil {
		return nil, err
	}

	raw := &scopeCursor{fetcher: s.raw, pageSize: s.rawPageSize}
	allowed := &scopeCursor{fetcher: s.allowed, pageSize: s.allowedPageSize}

	if err := raw.fetch(ctx); err != nil {
		return nil, err
	}
	if err := allowed.fetch(ctx); err != nil {
		return nil, err
	}

	need := start + pageSize
	var results []model.ActivityID

	for {
		results = appendIntersection(results, raw.page, allowed.page, s.maxID)
		if len(results) >= need {
			return results[start:need], nil
		}

		switch {
		case raw.done && allowed.done:
			return sliceWindow(results, start), nil

		case raw.done:
			// Only the allowed source can move. Its future values are
			// all below its current tail; once the raw final page sits
			// entirely at or above that tail, no overlap remains.
			if len(raw.page) == 0 || raw.tail() >= allowed.tail() {
				return sliceWindow(results, start), nil
			}
			if err := allowed.fetch(ctx); err != nil {
				return nil, err
			}

		case allowed.done:
			if len(allowed.page) == 0 || allowed.tail() >= raw.tail() {
				return sliceWindow(results, start), nil
			}
			if err := raw.fetch(ctx); err != nil {
				return nil, err
			}

		default:
			rawTail, allowedTail := raw.tail(), allowed.tail()
			if rawTail >= allowedTail {
				if err := raw.fetch(ctx); err != nil {
					return nil, err
				}
			}
			if allowedTail >= rawTail {
				if err := allowed.fetch(ctx); err != nil {
					return nil, err
				}
			}
		}
	}
}

// appendIntersection walks two descending pages in lockstep and appends the
// common IDs below maxID to dst.
func appendIntersection(dst, a, b []model.ActivityID, maxID model.ActivityID) []model.ActivityID {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			if a[i] < maxID {
				dst = append(dst, a[i])
			}
			i++
			j++
		case a[i] > b[j]:
			i++
		default:
			j++
		}
	}
	return dst
}

func sliceWindow(results []model.ActivityID, start int) []model.ActivityID {
	if start >= len(results) {
		return nil
	}
	return results[start:]
}
