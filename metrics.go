package pairwise

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordBind is called after each bind or replace attempt.
	RecordBind(err error)

	// RecordEvaluate is called after each public single-pair evaluation.
	// Cells evaluated inside an assembly are not reported individually.
	RecordEvaluate(duration time.Duration, err error)

	// RecordCacheBuild is called after each triangular cache build over n vectors.
	RecordCacheBuild(n int, duration time.Duration, err error)

	// RecordAssemble is called after each matrix assembly.
	RecordAssemble(rows, cols int, symmetric bool, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBind(error)                                    {}
func (NoopMetricsCollector) RecordEvaluate(time.Duration, error)                 {}
func (NoopMetricsCollector) RecordCacheBuild(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordAssemble(int, int, bool, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	BindCount          atomic.Int64
	BindErrors         atomic.Int64
	EvaluateCount      atomic.Int64
	EvaluateErrors     atomic.Int64
	EvaluateTotalNanos atomic.Int64
	CacheBuildCount    atomic.Int64
	CacheBuildErrors   atomic.Int64
	CacheSlots         atomic.Int64
	AssembleCount      atomic.Int64
	AssembleErrors     atomic.Int64
	AssembleCells      atomic.Int64
	AssembleTotalNanos atomic.Int64
}

// RecordBind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBind(err error) {
	b.BindCount.Add(1)
	if err != nil {
		b.BindErrors.Add(1)
	}
}

// RecordEvaluate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluate(duration time.Duration, err error) {
	b.EvaluateCount.Add(1)
	b.EvaluateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EvaluateErrors.Add(1)
	}
}

// RecordCacheBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheBuild(n int, _ time.Duration, err error) {
	b.CacheBuildCount.Add(1)
	if err != nil {
		b.CacheBuildErrors.Add(1)
		return
	}
	b.CacheSlots.Add(int64(n) * int64(n+1) / 2)
}

// RecordAssemble implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAssemble(rows, cols int, _ bool, duration time.Duration, err error) {
	b.AssembleCount.Add(1)
	b.AssembleTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AssembleErrors.Add(1)
		return
	}
	b.AssembleCells.Add(int64(rows) * int64(cols))
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	BindCount        int64
	BindErrors       int64
	EvaluateCount    int64
	EvaluateErrors   int64
	EvaluateAvgNanos int64
	CacheBuildCount  int64
	CacheBuildErrors int64
	CacheSlots       int64
	AssembleCount    int64
	AssembleErrors   int64
	AssembleCells    int64
	AssembleAvgNanos int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BindCount:        b.BindCount.Load(),
		BindErrors:       b.BindErrors.Load(),
		EvaluateCount:    b.EvaluateCount.Load(),
		EvaluateErrors:   b.EvaluateErrors.Load(),
		EvaluateAvgNanos: avg(b.EvaluateTotalNanos.Load(), b.EvaluateCount.Load()),
		CacheBuildCount:  b.CacheBuildCount.Load(),
		CacheBuildErrors: b.CacheBuildErrors.Load(),
		CacheSlots:       b.CacheSlots.Load(),
		AssembleCount:    b.AssembleCount.Load(),
		AssembleErrors:   b.AssembleErrors.Load(),
		AssembleCells:    b.AssembleCells.Load(),
		AssembleAvgNanos: avg(b.AssembleTotalNanos.Load(), b.AssembleCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}
