package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of the process, served by /api/health/live
type RuntimeStats struct {
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	SysMB         float64 `json:"sys_mb"`
	NumGC         uint32  `json:"gc_count"`
	LastGCPauseMS float64 `json:"last_gc_pause_ms"`
	CPUs          int     `json:"cpu_count"`
	GoVersion     string  `json:"go_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

const mb = 1 << 20

// ReadRuntimeStats samples the runtime. It stops the world for
// runtime.ReadMemStats; do not call it in a loop.
func ReadRuntimeStats(startTime time.Time) RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	var lastPause time.Duration
	if ms.NumGC > 0 {
		lastPause = time.Duration(ms.PauseNs[(ms.NumGC+255)%256])
	}

	return RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(ms.HeapAlloc) / mb,
		SysMB:         float64(ms.Sys) / mb,
		NumGC:         ms.NumGC,
		LastGCPauseMS: float64(lastPause) / float64(time.Millisecond),
		CPUs:          runtime.NumCPU(),
		GoVersion:     runtime.Version(),
		UptimeSeconds: time.Since(startTime).Seconds(),
	}
}

// SystemMetricsCollector exports RuntimeStats as observable gauges. The
// runtime is sampled once per collection, not on a timer.
type SystemMetricsCollector struct {
	startTime    time.Time
	registration metric.Registration
	stopOnce     sync.Once
}

// NewSystemMetricsCollector registers the system_* gauges on meter
func NewSystemMetricsCollector(meter metric.Meter, startTime time.Time) (*SystemMetricsCollector, error) {
	goroutines, err := meter.Int64ObservableGauge("system_goroutines",
		metric.WithDescription("Number of active goroutines"))
	if err != nil {
		return nil, fmt.Errorf("system_goroutines: %w", err)
	}
	heap, err := meter.Float64ObservableGauge("system_heap_alloc_megabytes",
		metric.WithDescription("Heap currently allocated"), metric.WithUnit("MBy"))
	if err != nil {
		return nil, fmt.Errorf("system_heap_alloc_megabytes: %w", err)
	}
	gcPause, err := meter.Float64ObservableGauge("system_last_gc_pause_milliseconds",
		metric.WithDescription("Most recent garbage collection pause"), metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("system_last_gc_pause_milliseconds: %w", err)
	}
	uptime, err := meter.Float64ObservableGauge("system_process_uptime_seconds",
		metric.WithDescription("Process uptime"), metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("system_process_uptime_seconds: %w", err)
	}

	c := &SystemMetricsCollector{startTime: startTime}
	c.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := ReadRuntimeStats(c.startTime)
		o.ObserveInt64(goroutines, int64(s.Goroutines))
		o.ObserveFloat64(heap, s.HeapAllocMB)
		o.ObserveFloat64(gcPause, s.LastGCPauseMS)
		o.ObserveFloat64(uptime, s.UptimeSeconds)
		return nil
	}, goroutines, heap, gcPause, uptime)
	if err != nil {
		return nil, fmt.Errorf("register system metrics callback: %w", err)
	}
	return c, nil
}

// Stats samples the runtime now
func (c *SystemMetricsCollector) Stats() RuntimeStats {
	return ReadRuntimeStats(c.startTime)
}

// StartTime is the process start the uptime gauge counts from
func (c *SystemMetricsCollector) StartTime() time.Time {
	return c.startTime
}

// Stop unregisters the gauges. Calls after the first are no-ops.
func (c *SystemMetricsCollector) Stop() error {
	var err error
	c.stopOnce.Do(func() { err = c.registration.Unregister() })
	return err
}
