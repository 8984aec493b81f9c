package streamlist

import (
	"context"

	"github.com/hupe1980/streamscope/model"
)

// Trimmer filters candidate activity IDs down to those the requesting user
// is authorized to see, using the per-user visibility set in the store.
type Trimmer struct {
	store *Store
}

// NewTrimmer creates a security trimmer over the given store.
func NewTrimmer(store *Store) *Trimmer {
	return &Trimmer{store: store}
}

// Trim returns the subsequence of candidates present in the user's
// visibility set, preserving order.
func (t *Trimmer) Trim(ctx context.Context, candidates []model.ActivityID, userID model.EntityID) ([]model.ActivityID, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}
	key := VisibleKey(userID)

	// Prime the bitmap once for the whole page.
	if _, err := t.store.IDs(ctx, key); err != nil {
		return nil, err
	}

	out := candidates[:0:0]
	for _, id := range candidates {
		ok, err := t.store.Contains(ctx, key, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, id)
		}
	}
	return out, nil
}
