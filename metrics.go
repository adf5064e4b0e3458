package rowmap

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    putCounter      prometheus.Counter
//	    exportHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordPut(duration time.Duration, err error) {
//	    p.putCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordPut is called after each put operation.
	// duration is the total time taken, err is nil if successful.
	RecordPut(duration time.Duration, err error)

	// RecordGet is called after each get operation.
	RecordGet(duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordExport is called after each export run.
	// rows is the number of rows written, duration is the total time taken.
	RecordExport(rows int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(time.Duration, error)           {}
func (NoopMetricsCollector) RecordGet(time.Duration, error)           {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)        {}
func (NoopMetricsCollector) RecordExport(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PutCount         atomic.Int64
	PutErrors        atomic.Int64
	PutTotalNanos    atomic.Int64
	GetCount         atomic.Int64
	GetErrors        atomic.Int64
	GetTotalNanos    atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	ExportCount      atomic.Int64
	ExportErrors     atomic.Int64
	ExportRows       atomic.Int64
	ExportTotalNanos atomic.Int64
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(duration time.Duration, err error) {
	b.PutCount.Add(1)
	b.PutTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PutErrors.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GetErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(rows int64, duration time.Duration, err error) {
	b.ExportCount.Add(1)
	b.ExportTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ExportErrors.Add(1)
		return
	}
	b.ExportRows.Add(rows)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PutCount:     b.PutCount.Load(),
		PutErrors:    b.PutErrors.Load(),
		PutAvgNanos:  avgNanos(b.PutTotalNanos.Load(), b.PutCount.Load()),
		GetCount:     b.GetCount.Load(),
		GetErrors:    b.GetErrors.Load(),
		GetAvgNanos:  avgNanos(b.GetTotalNanos.Load(), b.GetCount.Load()),
		DeleteCount:  b.DeleteCount.Load(),
		DeleteErrors: b.DeleteErrors.Load(),
		ExportCount:  b.ExportCount.Load(),
		ExportErrors: b.ExportErrors.Load(),
		ExportRows:   b.ExportRows.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PutCount     int64
	PutErrors    int64
	PutAvgNanos  int64
	GetCount     int64
	GetErrors    int64
	GetAvgNanos  int64
	DeleteCount  int64
	DeleteErrors int64
	ExportCount  int64
	ExportErrors int64
	ExportRows   int64
}
