package streamscope

import (
	"errors"
	"fmt"

	"github.com/hupe1980/streamscope/query"
	"github.com/hupe1980/streamscope/transform"
)

var (
	// ErrBadRequest indicates a stream request that could not be parsed.
	ErrBadRequest = errors.New("bad request")

	// ErrNotAuthorized indicates a request for a private scope the
	// requesting user does not own.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound indicates a symbolic name that resolved to no directory
	// entity.
	ErrNotFound = errors.New("not found")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, query.ErrMalformedRequest) {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if errors.Is(err, transform.ErrNotAuthorized) {
		return fmt.Errorf("%w: %w", ErrNotAuthorized, err)
	}
	if errors.Is(err, transform.ErrUnknownEntity) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
