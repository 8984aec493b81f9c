package source

import (
	"context"

	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/query"
)

// NullDataSource handles nothing. It is the placeholder wired in for
// clause kinds with no real source yet: the composing layer skips it and
// widens the merge budget, the same degradation as an unrecognized clause.
type NullDataSource struct{}

var _ DataSource = NullDataSource{}

// Fetch returns an unhandled result.
func (NullDataSource) Fetch(_ context.Context, _ *query.Query, _ model.EntityID) (Result, error) {
	return Result{}, nil
}
