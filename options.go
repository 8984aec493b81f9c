package streamscope

import (
	"log/slog"

	"github.com/hupe1980/streamscope/fetch"
	"github.com/hupe1980/streamscope/source"
	"github.com/hupe1980/streamscope/streamlist"
)

// DefaultSafetyCap bounds any single merged candidate list. Queries with
// clauses no source handles widen their merge budget to this cap instead
// of the requested page size.
const DefaultSafetyCap = 10000

// DefaultMaxPasses bounds the widening loop: each pass doubles the
// candidate batch, so the reachable batch size is count * 2^(passes-1).
const DefaultMaxPasses = 5

type options struct {
	logger        *Logger
	metrics       MetricsCollector
	safetyCap     int
	maxPasses     int
	scopePageSize int
	storeOptions  []streamlist.StoreOption
	extraSources  []source.DataSource
}

// Option configures Engine constructor behavior.
//
// Today options primarily exist to avoid exploding the API surface.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithSafetyCap overrides the merged candidate list bound.
func WithSafetyCap(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.safetyCap = n
		}
	}
}

// WithMaxPasses overrides the widening pass limit of the composing loop.
func WithMaxPasses(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPasses = n
		}
	}
}

// WithScopePageSize overrides the internal page size the result scoper
// uses when walking its two sources.
func WithScopePageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.scopePageSize = n
		}
	}
}

// WithStoreOptions passes options through to the stream-list store.
func WithStoreOptions(opts ...streamlist.StoreOption) Option {
	return func(o *options) {
		o.storeOptions = append(o.storeOptions, opts...)
	}
}

// WithDataSource appends an extra data source to the fan-out, after the
// built-in cache, relational and full-text sources.
func WithDataSource(ds source.DataSource) Option {
	return func(o *options) {
		if ds != nil {
			o.extraSources = append(o.extraSources, ds)
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:        NoopLogger(),
		metrics:       NoopMetricsCollector{},
		safetyCap:     DefaultSafetyCap,
		maxPasses:     DefaultMaxPasses,
		scopePageSize: fetch.DefaultScopePageSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
