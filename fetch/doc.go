// Package fetch defines the paged-stream contract the retrieval pipeline is
// built on, and the fetchers that compose it.
//
// # PageFetcher
//
// A PageFetcher produces sub-sequences of a conceptually unbounded,
// canonically ordered stream. Activity ID streams are strictly descending
// (newest first). A page shorter than requested signals exhaustion.
//
// # Scoping
//
// ScopedPageFetcher intersects a broad raw stream with an allowed-ID stream,
// both lazily paged, and emits only the IDs present in both. It is the
// authorization-scoping kernel of the pipeline: a full-text search over all
// activities is narrowed to, say, the requester's followed streams without
// fetching more of either source than the requested page requires.
//
// # Search adaptation
//
// SearchPageFetcher maps a full-text engine's result-window paging onto the
// PageFetcher contract and applies last-seen-ID / minimum-ID bounds for
// incremental polling.
//
// All fetchers are stateless between calls; construct one graph per logical
// request and discard it.
package fetch
