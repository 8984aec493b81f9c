package source

import (
	"context"

	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/query"
)

// Result is a data source's answer for one query.
type Result struct {
	// Handled reports whether the source recognized any clause of the
	// query. A handled query with no matches carries an empty IDs slice;
	// an unhandled query is a different outcome and makes the composing
	// layer widen its merge budget.
	Handled bool

	// IDs is the descending, de-duplicated match list. Nil when Handled
	// is false.
	IDs []model.ActivityID
}

// DataSource answers the clauses of a stream query it knows how to serve.
// Sources are independent; the composing layer fans a query out to all of
// them and merges the handled results.
type DataSource interface {
	Fetch(ctx context.Context, q *query.Query, userID model.EntityID) (Result, error)
}

// Multi groups data sources. Order is the deterministic fan-out order of
// the composing layer.
type Multi []DataSource
