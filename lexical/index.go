package lexical

import (
	"context"
	"errors"

	"github.com/hupe1980/streamscope/model"
)

// ErrQueryGrammar is returned when the query string violates the engine's
// grammar, e.g. an unbalanced quote or a boolean query consisting solely of
// negated terms. Callers serving as-you-type input absorb it into an empty
// result rather than failing the request.
var ErrQueryGrammar = errors.New("query grammar error")

// Index is the interface for a full-text activity index.
type Index interface {
	// Add indexes an activity's content. Re-adding an ID replaces the
	// previous document.
	Add(a model.Activity) error
	// Delete removes an activity from the index.
	Delete(id model.ActivityID) error
	// SearchIDs returns activity IDs matching the query in descending ID
	// order (newest first), skipping the first offset matches. This is
	// the ordering the scoping pipeline depends on.
	SearchIDs(ctx context.Context, query string, offset, limit int) ([]model.ActivityID, error)
	// SearchRanked returns matching IDs in descending relevance order,
	// ties broken by descending ID.
	SearchRanked(ctx context.Context, query string, offset, limit int) ([]model.ActivityID, error)
	// Close closes the index.
	Close() error
}
