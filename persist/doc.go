// Package persist is the relational store behind the stream pipeline. It
// backs three read surfaces: the entity directory used by request
// transformers, the stream-list loader behind the cache, and the
// clause-driven ID queries of the relational data source.
//
// The store is SQLite (modernc.org/sqlite, cgo-free). Directory IDs are
// allocated from a single sequence shared by people, groups, organizations
// and applications, so an entity ID alone identifies a stream.
package persist
