package fetch

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidStartIndex is returned when a page is requested with a
	// negative start index.
	ErrInvalidStartIndex = errors.New("start index must be non-negative")

	// ErrInvalidPageSize is returned when a page is requested with a
	// non-positive page size.
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// PageFetcher produces sub-sequences of a conceptually unbounded stream.
//
// FetchPage returns the elements [start, start+pageSize) of the stream in the
// fetcher's canonical order. A page shorter than pageSize means the stream is
// exhausted. Repeated calls with the same arguments against unchanged backing
// data return the same result.
//
// Implementations may block on network I/O; errors from the backing store
// propagate to the caller unchanged.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, start, pageSize int) ([]T, error)
}

// ValidatePageArgs fails fast on argument violations shared by every
// PageFetcher implementation.
func ValidatePageArgs(start, pageSize int) error {
	if start < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidStartIndex, start)
	}
	if pageSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	return nil
}

// ListPageFetcher serves pages from an in-memory slice. The slice is not
// copied; callers must not mutate it after construction.
type ListPageFetcher[T any] struct {
	data []T
}

// NewListPageFetcher creates a PageFetcher over the given slice.
func NewListPageFetcher[T any](data []T) *ListPageFetcher[T] {
	return &ListPageFetcher[T]{data: data}
}

// FetchPage returns the sub-slice [start, start+pageSize), clamped to the
// end of the data.
func (f *ListPageFetcher[T]) FetchPage(_ context.Context, start, pageSize int) ([]T, error) {
	if err := ValidatePageArgs(start, pageSize); err != nil {
		return nil, err
	}
	if start >= len(f.data) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(f.data) {
		end = len(f.data)
	}
	return f.data[start:end], nil
}

// Len returns the total number of elements behind the fetcher.
func (f *ListPageFetcher[T]) Len() int { return len(f.data) }
