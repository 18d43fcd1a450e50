// Package metrics defines the Prometheus collectors of fsbench, and helpers
// which export a run's metrics once it completes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keys for fsbench metrics.
const (
	Fail = "fail"
	Ok   = "ok"
)

// Collectors of filesystem operations issued by a benchmark.
var (
	FsOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fsbench_fs_ops_total",
		Help: "Cumulative number of filesystem operations, by operation and status.",
	}, []string{"op", "status"})
	FsBytesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fsbench_fs_bytes_total",
		Help: "Cumulative number of bytes read or written.",
	}, []string{"op"})
	FsOpDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fsbench_fs_op_duration_seconds",
		Help:    "Duration of individual filesystem operations.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12), // 1us to ~4s.
	}, []string{"op"})
)

// Collectors of benchmark phases and runs.
var (
	PhaseDurationSeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fsbench_phase_duration_seconds",
		Help: "Elapsed wall-clock seconds of the most recent execution of a phase.",
	}, []string{"phase"})
	PhaseBytesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fsbench_phase_bytes_total",
		Help: "Cumulative number of bytes transferred by a phase.",
	}, []string{"phase"})
	PhaseFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fsbench_phase_failures_total",
		Help: "Cumulative number of failed operations within a phase, fatal or not.",
	}, []string{"phase"})
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fsbench_runs_total",
		Help: "Cumulative number of benchmark runs, by status.",
	}, []string{"status"})
)

// FsBenchCollectors returns all collectors of fsbench.
func FsBenchCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		FsBytesTotal,
		FsOpDurationSeconds,
		FsOpsTotal,
		PhaseBytesTotal,
		PhaseDurationSeconds,
		PhaseFailuresTotal,
		RunsTotal,
	}
}
