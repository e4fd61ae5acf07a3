package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics instruments the Go runtime of the normalizer process.
// The business metrics in otel.go cover the parse pipeline itself;
// these cover the process hosting it, so a stuck batch run shows up as
// goroutine and heap growth on the same scrape endpoint.
type RuntimeMetrics struct {
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	heapSys    metric.Int64Gauge
	gcCycles   metric.Int64Counter
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge
}

// NewRuntimeMetrics registers the runtime instruments on the meter.
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"runtime_goroutines",
		metric.WithDescription("Number of live goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	heapSys, err := meter.Int64Gauge(
		"runtime_heap_sys_bytes",
		metric.WithDescription("Bytes of heap memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCycles, err := meter.Int64Counter(
		"runtime_gc_cycles_total",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"runtime_gc_pause_seconds",
		metric.WithDescription("Most recent garbage collection pause"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"process_uptime_seconds",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goroutines: goroutines,
		heapAlloc:  heapAlloc,
		heapSys:    heapSys,
		gcCycles:   gcCycles,
		gcPause:    gcPause,
		uptime:     uptime,
	}, nil
}

// RuntimeSnapshot is one observation of the runtime.
type RuntimeSnapshot struct {
	Goroutines  int
	HeapAlloc   uint64
	HeapSys     uint64
	GCCycles    uint32
	LastGCPause time.Duration
	Uptime      time.Duration
	Timestamp   time.Time
}

// RuntimeMonitor records a runtime snapshot on a fixed interval until
// stopped. GC cycles are reported as a counter, so the monitor keeps
// the last observed cycle count and adds only the delta per tick.
type RuntimeMonitor struct {
	metrics     *RuntimeMetrics
	startTime   time.Time
	interval    time.Duration
	lastGCCount uint32
	stopCh      chan struct{}
}

// NewRuntimeMonitor builds a monitor that observes the runtime every
// interval once started.
func NewRuntimeMonitor(meter metric.Meter, interval time.Duration) (*RuntimeMonitor, error) {
	metrics, err := NewRuntimeMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("register runtime metrics: %w", err)
	}
	return &RuntimeMonitor{
		metrics:   metrics,
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start collects immediately and then on every tick. It blocks until
// Stop is called or the context is cancelled; callers run it in its
// own goroutine.
func (m *RuntimeMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Observe(ctx)
	for {
		select {
		case <-ticker.C:
			m.Observe(ctx)
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the collection loop.
func (m *RuntimeMonitor) Stop() {
	close(m.stopCh)
}

// Observe takes one runtime snapshot and records it.
func (m *RuntimeMonitor) Observe(ctx context.Context) RuntimeSnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snap := RuntimeSnapshot{
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   ms.HeapAlloc,
		HeapSys:     ms.HeapSys,
		GCCycles:    ms.NumGC,
		LastGCPause: time.Duration(ms.PauseNs[(ms.NumGC+255)%256]),
		Uptime:      time.Since(m.startTime),
		Timestamp:   time.Now(),
	}

	m.metrics.goroutines.Record(ctx, int64(snap.Goroutines))
	m.metrics.heapAlloc.Record(ctx, int64(snap.HeapAlloc))
	m.metrics.heapSys.Record(ctx, int64(snap.HeapSys))
	m.metrics.uptime.Record(ctx, snap.Uptime.Seconds())

	if delta := snap.GCCycles - m.lastGCCount; delta > 0 {
		m.metrics.gcCycles.Add(ctx, int64(delta))
		m.metrics.gcPause.Record(ctx, snap.LastGCPause.Seconds())
		m.lastGCCount = snap.GCCycles
	}

	return snap
}
