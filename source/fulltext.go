package source

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hupe1980/streamscope/lexical"
	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/query"
)

// FullTextDataSource serves the keywords clause from the full-text index.
// With recency sort it returns matches in descending ID order so the
// result merges cleanly with the other sources; with relevance sort it
// returns score order.
type FullTextDataSource struct {
	index    lexical.Index
	maxItems int
	logger   *slog.Logger
}

// NewFullTextDataSource creates a search-backed data source. maxItems
// bounds the match list.
func NewFullTextDataSource(index lexical.Index, maxItems int, logger *slog.Logger) *FullTextDataSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FullTextDataSource{index: index, maxItems: maxItems, logger: logger}
}

var _ DataSource = (*FullTextDataSource)(nil)

// Fetch runs the keyword search. A query without keywords is not handled.
// A keyword query the grammar rejects is handled with an empty result;
// user-typed search input must not fail the whole stream request.
func (s *FullTextDataSource) Fetch(ctx context.Context, q *query.Query, _ model.EntityID) (Result, error) {
	keywords := q.Keywords()
	if strings.TrimSpace(keywords) == "" {
		return Result{}, nil
	}

	searchQuery := BuildSearchQuery(keywords)

	search := s.index.SearchIDs
	if q.SortBy == query.SortRelevance {
		search = s.index.SearchRanked
	}
	ids, err := search(ctx, searchQuery, 0, s.maxItems)
	if errors.Is(err, lexical.ErrQueryGrammar) {
		s.logger.Warn("rejected search query", "query", searchQuery, "error", err)
		return Result{Handled: true, IDs: []model.ActivityID{}}, nil
	}
	if err != nil {
		return Result{}, err
	}
	if ids == nil {
		ids = []model.ActivityID{}
	}
	s.logger.Debug("fulltext source answered", "query", searchQuery, "ids", len(ids))
	return Result{Handled: true, IDs: ids}, nil
}

// BuildSearchQuery turns raw user keywords into a query the index grammar
// accepts: each keyword is escaped, and a query consisting solely of
// negated terms gets the everything keyword appended, since the grammar
// rejects purely negative queries.
func BuildSearchQuery(keywords string) string {
	fields := strings.Fields(keywords)
	terms := make([]string, 0, len(fields)+1)
	positive := false

	for _, f := range fields {
		// Only the uppercase form is the boolean operator; the lowercase
		// word stays a literal search term, matching the index grammar.
		if f == "NOT" {
			terms = append(terms, f)
			continue
		}
		term := escapeKeyword(f)
		if term == "" {
			continue
		}
		terms = append(terms, term)
		if term[0] != '-' && term[0] != '!' {
			// A bare NOT negates the following term.
			if len(terms) < 2 || terms[len(terms)-2] != "NOT" {
				positive = true
			}
		}
	}
	if len(terms) == 0 {
		return ""
	}
	if !positive {
		terms = append(terms, model.EverythingKeyword)
	}
	return strings.Join(terms, " ")
}

// escapeKeyword strips grammar metacharacters from one keyword, keeping a
// single leading operator prefix.
func escapeKeyword(s string) string {
	var prefix string
	if s != "" && (s[0] == '-' || s[0] == '!' || s[0] == '+') {
		prefix = s[:1]
		s = s[1:]
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '(', ')', '"', ':', '+', '-', '!':
			continue
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return prefix + b.String()
}
