package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/streamscope/model"
	"github.com/hupe1980/streamscope/query"
)

var (
	// ErrNotAuthorized is returned when a clause asks for another
	// identity's private data, e.g. savedBy with someone else's account.
	// It propagates to the request boundary and aborts the request.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrUnknownEntity is returned when a symbolic name cannot be
	// resolved by the directory.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrNoTransformer is returned when no transformer is registered for
	// a clause kind that carries names to resolve.
	ErrNoTransformer = errors.New("no transformer registered for clause")
)

// Directory resolves human-facing identifiers to internal entity IDs. It is
// backed by the relational store (or its cache) and shared by all
// transformers.
//
// Implementations return an error satisfying errors.Is(err,
// ErrUnknownEntity) for names that do not exist.
type Directory interface {
	PersonID(ctx context.Context, accountName string) (model.EntityID, error)
	GroupID(ctx context.Context, shortName string) (model.EntityID, error)
	OrgID(ctx context.Context, shortName string) (model.EntityID, error)
	AppID(ctx context.Context, name string) (model.EntityID, error)
}

// Transformer resolves the symbolic names of one clause kind into entity
// IDs. Authorization-sensitive transformers verify the resolved target
// against the requesting user and fail with ErrNotAuthorized otherwise.
type Transformer interface {
	Transform(ctx context.Context, clause query.Clause, userID model.EntityID) ([]model.EntityID, error)
}

// Registry maps clause kinds to their transformers.
type Registry struct {
	transformers map[query.ClauseKind]Transformer
}

// NewRegistry creates a registry with the standard transformer set wired to
// the given directory.
func NewRegistry(dir Directory) *Registry {
	return &Registry{
		transformers: map[query.ClauseKind]Transformer{
			query.ClauseFollowedBy:   personTransformer{dir: dir},
			query.ClauseAuthoredBy:   personTransformer{dir: dir},
			query.ClauseSavedBy:      savedByTransformer{dir: dir},
			query.ClauseRecipient:    recipientTransformer{dir: dir},
			query.ClauseOrganization: orgTransformer{dir: dir},
			query.ClauseParentOrg:    orgTransformer{dir: dir},
			query.ClauseFromApp:      appTransformer{dir: dir},
			query.ClauseJoinedGroups: groupTransformer{dir: dir},
		},
	}
}

// Register replaces the transformer for a clause kind. Useful for tests and
// for deployments with custom directory semantics.
func (r *Registry) Register(kind query.ClauseKind, t Transformer) {
	r.transformers[kind] = t
}

// ResolveQuery resolves every name-bearing clause of q in place and returns
// a copy with Entities populated. Keyword and unknown clauses pass through
// untouched.
func (r *Registry) ResolveQuery(ctx context.Context, q *query.Query, userID model.EntityID) (*query.Query, error) {
	resolved := *q
	resolved.Clauses = make([]query.Clause, len(q.Clauses))
	copy(resolved.Clauses, q.Clauses)

	for i, c := range resolved.Clauses {
		if c.Kind == query.ClauseKeywords || c.Kind == query.ClauseUnknown || len(c.Names) == 0 {
			continue
		}
		t, ok := r.transformers[c.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoTransformer, c.Kind)
		}
		ids, err := t.Transform(ctx, c, userID)
		if err != nil {
			return nil, err
		}
		resolved.Clauses[i].Entities = ids
	}
	return &resolved, nil
}
