// Package progress carries advisory progress updates out of long-running sweeps.
//
// A Sink receives (completed, total) pairs. Sinks never influence the
// computation they observe; a slow sink and a Nop sink yield the same results.
package progress

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Sink receives progress updates. Implementations must be safe for concurrent use.
type Sink interface {
	Report(completed, total int64)
}

// Nop discards all updates.
type Nop struct{}

// Report implements Sink.
func (Nop) Report(int64, int64) {}

// Func adapts a function to Sink.
type Func func(completed, total int64)

// Report implements Sink.
func (f Func) Report(completed, total int64) { f(completed, total) }

// Throttled forwards at most one update per interval to the wrapped sink.
// The final update (completed == total) is always forwarded.
type Throttled struct {
	next    Sink
	limiter *rate.Limiter
}

// NewThrottled wraps next so that it sees at most one update per interval.
func NewThrottled(next Sink, interval time.Duration) *Throttled {
	if interval <= 0 {
		return &Throttled{next: next, limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Report implements Sink.
func (t *Throttled) Report(completed, total int64) {
	if completed >= total || t.limiter.Allow() {
		t.next.Report(completed, total)
	}
}

// Log writes updates to a structured logger at debug level.
type Log struct {
	logger *slog.Logger
	label  string
}

// NewLog creates a Sink logging under the given label.
func NewLog(logger *slog.Logger, label string) *Log {
	return &Log{logger: logger, label: label}
}

// Report implements Sink.
func (l *Log) Report(completed, total int64) {
	pct := 100.0
	if total > 0 {
		pct = float64(completed) * 100 / float64(total)
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "progress",
		slog.String("task", l.label),
		slog.Int64("completed", completed),
		slog.Int64("total", total),
		slog.Float64("percent", pct),
	)
}

// Tracker accumulates completed work from concurrent workers and forwards it to a Sink.
type Tracker struct {
	sink  Sink
	total int64
	done  atomic.Int64
}

// NewTracker creates a Tracker for total units. A nil sink is treated as Nop.
func NewTracker(sink Sink, total int64) *Tracker {
	if sink == nil {
		sink = Nop{}
	}
	return &Tracker{sink: sink, total: total}
}

// Add records n completed units and reports the new count.
func (t *Tracker) Add(n int64) {
	t.sink.Report(t.done.Add(n), t.total)
}

// Completed returns the number of recorded units.
func (t *Tracker) Completed() int64 {
	return t.done.Load()
}

// Finish reports completion regardless of how many units were recorded.
func (t *Tracker) Finish() {
	t.sink.Report(t.total, t.total)
}
