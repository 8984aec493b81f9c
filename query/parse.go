package query

import (
	"errors"
	"fmt"
	"sort"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/streamscope/model"
)

// ErrMalformedRequest is returned when the request body is not a JSON
// object of the expected shape. Malformed requests are a hard failure; only
// the free-text keywords value may be adversarial without failing the
// request (the full-text source absorbs grammar errors).
var ErrMalformedRequest = errors.New("malformed stream query request")

// DefaultCount is the page size used when the request carries none.
const DefaultCount = 10

// rawRequest mirrors the boundary JSON shape. The "query" sub-object is an
// open map at the wire level; parsing closes it into tagged clauses.
type rawRequest struct {
	Count *int               `json:"count"`
	MinID *int64             `json:"minId"`
	MaxID *int64             `json:"maxId"`
	Query map[string]rawTerm `json:"query"`
}

// rawTerm accepts either a JSON string or an array of strings.
type rawTerm struct {
	values []string
}

func (t *rawTerm) UnmarshalJSON(data []byte) error {
	var s string
	if err := gojson.Unmarshal(data, &s); err == nil {
		t.values = []string{s}
		return nil
	}
	var list []string
	if err := gojson.Unmarshal(data, &list); err == nil {
		t.values = list
		return nil
	}
	return fmt.Errorf("term must be a string or array of strings")
}

var clauseKinds = map[string]ClauseKind{
	"followedBy":   ClauseFollowedBy,
	"authoredBy":   ClauseAuthoredBy,
	"recipient":    ClauseRecipient,
	"organization": ClauseOrganization,
	"parentOrg":    ClauseParentOrg,
	"savedBy":      ClauseSavedBy,
	"fromApp":      ClauseFromApp,
	"joinedGroups": ClauseJoinedGroups,
}

// Parse decodes a JSON stream query into its typed form.
//
// Unrecognized keys in the "query" sub-object do not fail the parse; they
// become ClauseUnknown entries so the composing layer can degrade to its
// conservative merge instead of crashing.
func Parse(data []byte) (*Query, error) {
	var raw rawRequest
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	q := &Query{
		Count: DefaultCount,
		MaxID: model.MaxActivityID,
	}
	if raw.Count != nil {
		if *raw.Count <= 0 {
			return nil, fmt.Errorf("%w: count must be positive", ErrMalformedRequest)
		}
		q.Count = *raw.Count
	}
	if raw.MinID != nil {
		q.MinID = model.ActivityID(*raw.MinID)
	}
	if raw.MaxID != nil && *raw.MaxID > 0 {
		q.MaxID = model.ActivityID(*raw.MaxID)
	}

	// Deterministic clause order regardless of map iteration.
	keys := make([]string, 0, len(raw.Query))
	for k := range raw.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		term := raw.Query[key]
		switch key {
		case "sortBy":
			s, err := parseSort(first(term.values))
			if err != nil {
				return nil, err
			}
			q.SortBy = s
		case "keywords":
			q.Clauses = append(q.Clauses, Clause{Kind: ClauseKeywords, Text: first(term.values)})
		default:
			kind, ok := clauseKinds[key]
			if !ok {
				q.Clauses = append(q.Clauses, Clause{Kind: ClauseUnknown, Key: key, Names: term.values})
				continue
			}
			q.Clauses = append(q.Clauses, Clause{Kind: kind, Names: term.values})
		}
	}
	return q, nil
}

func parseSort(s string) (Sort, error) {
	switch s {
	case "", "date":
		return SortRecency, nil
	case "relevance":
		return SortRelevance, nil
	default:
		return SortRecency, fmt.Errorf("%w: unsupported sortBy %q", ErrMalformedRequest, s)
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
