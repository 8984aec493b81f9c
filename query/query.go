package query

import "github.com/hupe1980/streamscope/model"

// Sort selects the ordering of a stream query's results.
type Sort uint8

const (
	// SortRecency orders by descending activity ID (newest first). It is
	// the default and the only ordering the cached list path can serve.
	SortRecency Sort = iota
	// SortRelevance orders by full-text score.
	SortRelevance
)

// ClauseKind tags the closed set of filter clause variants. Data source
// dispatch matches over the tag; there is no string-keyed handler lookup,
// and "no source handles this clause" is an explicit outcome rather than a
// nil sentinel.
type ClauseKind uint8

const (
	ClauseUnknown ClauseKind = iota
	ClauseFollowedBy
	ClauseAuthoredBy
	ClauseRecipient
	ClauseOrganization
	ClauseParentOrg
	ClauseSavedBy
	ClauseFromApp
	ClauseJoinedGroups
	ClauseKeywords
)

// String returns the JSON key the clause kind corresponds to.
func (k ClauseKind) String() string {
	switch k {
	case ClauseFollowedBy:
		return "followedBy"
	case ClauseAuthoredBy:
		return "authoredBy"
	case ClauseRecipient:
		return "recipient"
	case ClauseOrganization:
		return "organization"
	case ClauseParentOrg:
		return "parentOrg"
	case ClauseSavedBy:
		return "savedBy"
	case ClauseFromApp:
		return "fromApp"
	case ClauseJoinedGroups:
		return "joinedGroups"
	case ClauseKeywords:
		return "keywords"
	default:
		return "unknown"
	}
}

// Clause is one filter of a stream query. Name-bearing clauses start with
// symbolic identifiers (account names, group short names); the transform
// layer resolves them into EntityIDs before data sources run.
type Clause struct {
	Kind ClauseKind

	// Names holds the unresolved symbolic identifiers from the request,
	// e.g. account names for followedBy or a group short name for
	// recipient. Empty for keyword clauses.
	Names []string

	// Entities holds the resolved entity IDs. Populated by the transform
	// layer; empty until then.
	Entities []model.EntityID

	// Text is the free-text search input for ClauseKeywords.
	Text string

	// Key preserves the original JSON key for ClauseUnknown so the
	// unhandled condition can be logged meaningfully.
	Key string
}

// Query is a parsed stream query: a closed set of typed clauses plus the
// paging window.
type Query struct {
	Clauses []Clause
	SortBy  Sort

	// Count is the requested page size.
	Count int

	// MinID is an exclusive lower bound on returned IDs ("newer than"),
	// zero when absent. MaxID is an exclusive upper bound ("older than"),
	// model.MaxActivityID when absent.
	MinID model.ActivityID
	MaxID model.ActivityID
}

// Clause returns the first clause of the given kind and whether it exists.
func (q *Query) Clause(kind ClauseKind) (Clause, bool) {
	for _, c := range q.Clauses {
		if c.Kind == kind {
			return c, true
		}
	}
	return Clause{}, false
}

// HasUnknown reports whether the query contains a clause no parser variant
// matched. The composing layer widens its merge budget to the safety cap
// when this is true.
func (q *Query) HasUnknown() bool {
	_, ok := q.Clause(ClauseUnknown)
	return ok
}

// Keywords returns the free-text input, empty when the query has no
// keyword clause.
func (q *Query) Keywords() string {
	c, ok := q.Clause(ClauseKeywords)
	if !ok {
		return ""
	}
	return c.Text
}
