package bench

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.gazette.dev/fsbench/metrics"
)

// Result of a timed phase.
type Result struct {
	// Phase number, from 1.
	Phase int
	Name  string
	// Start and End are clock readings taken around the phase.
	Start, End time.Time
	Elapsed    time.Duration
	// Ops is the number of records processed (manifest phases) or of
	// data-bearing reads and writes (block phases).
	Ops int
	// Bytes transferred by block phases.
	Bytes int64
	// Failures tolerated by a lenient phase.
	Failures int
	// Err is the fatal error of the phase, if any.
	Err error
}

// Seconds renders the Elapsed time at centisecond resolution, as "N.NN".
func (r Result) Seconds() string { return FormatSeconds(r.Elapsed) }

// BytesPerSecond is the throughput of the phase, or zero if the phase
// transferred no bytes or took no measurable time.
func (r Result) BytesPerSecond() float64 {
	if r.Bytes == 0 || r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Bytes) / r.Elapsed.Seconds()
}

// FormatSeconds renders |d| truncated to centiseconds, as "N.NN".
func FormatSeconds(d time.Duration) string {
	var centis = int64(d / (10 * time.Millisecond))
	if centis < 0 {
		centis = 0
	}
	return fmt.Sprintf("%d.%02d", centis/100, centis%100)
}

// Run is the outcome of a benchmark.
type Run struct {
	ID uuid.UUID
	// Label and Target describe the run. They're informational.
	Label  string
	Target string
	// Seed of the run's pseudo-random stream.
	Seed   uint32
	Config Config

	Started  time.Time
	Finished time.Time
	// States visited by the run, in order.
	States []State
	// Results of phases which ran, in order.
	Results []Result
	// Err which aborted the run, if any.
	Err error
}

// Failed is true if the run was aborted.
func (r *Run) Failed() bool { return r.Err != nil }

// Status of the run, as metrics.Ok or metrics.Fail.
func (r *Run) Status() string {
	if r.Failed() {
		return metrics.Fail
	}
	return metrics.Ok
}
