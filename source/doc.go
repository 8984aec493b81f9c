// Package source holds the data sources a stream query fans out to.
//
// Each source answers the clauses it knows how to serve and reports
// Handled=false otherwise. The cache source reads precomputed composite
// stream lists, the relational source runs indexed ID scans for clauses
// too numerous to keep warm, and the full-text source runs keyword
// search. The composing layer merges handled results with OR semantics
// and widens its merge budget when some clause went unhandled.
package source
