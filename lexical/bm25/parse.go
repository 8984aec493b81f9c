package bm25

import (
	"fmt"
	"strings"

	"github.com/hupe1980/streamscope/lexical"
)

// parsedQuery is the boolean structure of a query string: +term requires,
// -term / !term / NOT term excludes, bare terms are optional matches.
type parsedQuery struct {
	required []string
	optional []string
	excluded []string
}

func (p parsedQuery) empty() bool {
	return len(p.required) == 0 && len(p.optional) == 0 && len(p.excluded) == 0
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '"', ':':
			return ' '
		}
		return r
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}

func parseQuery(query string) (parsedQuery, error) {
	if strings.Count(query, `"`)%2 != 0 {
		return parsedQuery{}, fmt.Errorf("%w: unbalanced quote", lexical.ErrQueryGrammar)
	}
	if strings.Count(query, "(") != strings.Count(query, ")") {
		return parsedQuery{}, fmt.Errorf("%w: unbalanced parenthesis", lexical.ErrQueryGrammar)
	}

	var p parsedQuery
	negateNext := false
	for _, raw := range strings.Fields(query) {
		if raw == "NOT" {
			negateNext = true
			continue
		}
		negate := negateNext
		negateNext = false

		switch {
		case strings.HasPrefix(raw, "-"), strings.HasPrefix(raw, "!"):
			negate = true
			raw = raw[1:]
		case strings.HasPrefix(raw, "+"):
			raw = raw[1:]
			for _, t := range tokenize(raw) {
				if negate {
					p.excluded = append(p.excluded, t)
				} else {
					p.required = append(p.required, t)
				}
			}
			continue
		}

		for _, t := range tokenize(raw) {
			if negate {
				p.excluded = append(p.excluded, t)
			} else {
				p.optional = append(p.optional, t)
			}
		}
	}

	if negateNext {
		return parsedQuery{}, fmt.Errorf("%w: dangling NOT", lexical.ErrQueryGrammar)
	}
	if len(p.excluded) > 0 && len(p.required) == 0 && len(p.optional) == 0 {
		// The grammar forbids an all-negated boolean query; callers pad
		// with the everything keyword before reaching the index.
		return parsedQuery{}, fmt.Errorf("%w: purely negative query", lexical.ErrQueryGrammar)
	}
	return p, nil
}
