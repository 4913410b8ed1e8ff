package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// runStat is one value read from the runtime at collection time.
type runStat struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(ms *runtime.MemStats, uptime time.Duration) float64
}

// RunCollector reports the process footprint of a solver run. It is read
// once, when the metrics are exported at the end of the run.
type RunCollector struct {
	started time.Time
	stats   []runStat
}

// NewRunCollector starts the run clock.
func NewRunCollector(namespace, subsystem string) *RunCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
	}
	gauge, counter := prometheus.GaugeValue, prometheus.CounterValue

	return &RunCollector{
		started: time.Now(),
		stats: []runStat{
			{desc("run_uptime_seconds", "Seconds since the run started"), gauge,
				func(_ *runtime.MemStats, up time.Duration) float64 { return up.Seconds() }},
			{desc("run_heap_alloc_bytes", "Heap bytes in use"), gauge,
				func(ms *runtime.MemStats, _ time.Duration) float64 { return float64(ms.HeapAlloc) }},
			{desc("run_total_alloc_bytes", "Bytes allocated over the run, freed or not"), counter,
				func(ms *runtime.MemStats, _ time.Duration) float64 { return float64(ms.TotalAlloc) }},
			{desc("run_sys_bytes", "Bytes obtained from the OS"), gauge,
				func(ms *runtime.MemStats, _ time.Duration) float64 { return float64(ms.Sys) }},
			{desc("run_gc_cycles_total", "Completed GC cycles"), counter,
				func(ms *runtime.MemStats, _ time.Duration) float64 { return float64(ms.NumGC) }},
			{desc("run_gc_pause_seconds_total", "Total stop-the-world GC pause"), counter,
				func(ms *runtime.MemStats, _ time.Duration) float64 { return float64(ms.PauseTotalNs) / 1e9 }},
		},
	}
}

// Describe implements prometheus.Collector
func (c *RunCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, s := range c.stats {
		ch <- s.desc
	}
}

// Collect implements prometheus.Collector
func (c *RunCollector) Collect(ch chan<- prometheus.Metric) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	up := time.Since(c.started)

	for _, s := range c.stats {
		ch <- prometheus.MustNewConstMetric(s.desc, s.valueType, s.value(&ms, up))
	}
}

// Timer измеряет длительность этапа
type Timer struct {
	start   time.Time
	phase   string
	metrics *Metrics
}

// StartTimer запускает таймер этапа
func (m *Metrics) StartTimer(phase string) *Timer {
	return &Timer{start: time.Now(), phase: phase, metrics: m}
}

// ObserveDuration records the elapsed time under the timer's phase.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	t.metrics.ObservePhase(t.phase, d)
	return d
}
