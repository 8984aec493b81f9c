package streamscope

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordFetch is called after each stream fetch. requested is the page
	// size asked for, passes is the number of widening passes the
	// composing loop ran, err is nil if successful.
	RecordFetch(requested, passes int, duration time.Duration, err error)

	// RecordPost is called after each activity post.
	RecordPost(duration time.Duration, err error)

	// RecordSearch is called after each keyword search pass.
	RecordSearch(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFetch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPost(time.Duration, error)            {}
func (NoopMetricsCollector) RecordSearch(time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FetchCount      atomic.Int64
	FetchErrors     atomic.Int64
	FetchPasses     atomic.Int64
	FetchTotalNanos atomic.Int64

	PostCount  atomic.Int64
	PostErrors atomic.Int64

	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
}

// RecordFetch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFetch(requested, passes int, duration time.Duration, err error) {
	b.FetchCount.Add(1)
	b.FetchPasses.Add(int64(passes))
	b.FetchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FetchErrors.Add(1)
	}
}

// RecordPost implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPost(duration time.Duration, err error) {
	b.PostCount.Add(1)
	if err != nil {
		b.PostErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FetchCount:     b.FetchCount.Load(),
		FetchErrors:    b.FetchErrors.Load(),
		FetchAvgNanos:  b.getAvgFetchNanos(),
		FetchPasses:    b.FetchPasses.Load(),
		PostCount:      b.PostCount.Load(),
		PostErrors:     b.PostErrors.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgFetchNanos() int64 {
	count := b.FetchCount.Load()
	if count == 0 {
		return 0
	}
	return b.FetchTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FetchCount     int64
	FetchErrors    int64
	FetchAvgNanos  int64
	FetchPasses    int64
	PostCount      int64
	PostErrors     int64
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
}
