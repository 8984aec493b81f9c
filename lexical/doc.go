// Package lexical defines the full-text index contract for activity
// content search. The bm25 subpackage provides the in-memory reference
// implementation.
//
// Index construction and analysis (tokenizers, stemmers) are deliberately
// simple; the retrieval pipeline only depends on the paging and ordering
// guarantees of the search methods.
package lexical
