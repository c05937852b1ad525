package pairwise

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/pairwise/progress"
	"github.com/hupe1980/pairwise/resource"
)

type options struct {
	precompute       bool
	workers          int
	progress         progress.Sink
	metricsCollector MetricsCollector
	logger           *Logger
	resources        *resource.Controller
}

// Option configures an Engine.
type Option func(*options)

// WithPrecompute enables precompute mode: for self comparisons, single-pair
// evaluations are served from a triangular cache of float32 values built on
// first use.
func WithPrecompute(enabled bool) Option {
	return func(o *options) {
		o.precompute = enabled
	}
}

// WithWorkers sets the number of parallel workers used by Assemble,
// AssembleRows and EvaluatePairs. Values < 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithProgress configures an advisory progress sink for cache builds and assemblies.
// Pass nil to disable progress reporting.
//
// Example with throttled logging:
//
//	sink := progress.NewThrottled(progress.NewLog(slog.Default(), "distances"), time.Second)
//	e := pairwise.New(formula, pairwise.WithProgress(sink))
func WithProgress(sink progress.Sink) Option {
	return func(o *options) {
		o.progress = sink
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pairwise.NewJSONLogger(slog.LevelInfo)
//	e := pairwise.New(formula, pairwise.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

// WithResourceController shares a resource controller between engines.
// Cache buffers are reserved from its memory budget and assemblies take one
// of its assembly slots.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		progress:         progress.Nop{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.progress == nil {
		o.progress = progress.Nop{}
	}
	return o
}
