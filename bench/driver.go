// Package bench drives a filesystem micro-benchmark: it writes the run's
// manifests, then times each phase in a fixed order, reporting progress as
// it goes, and finally removes the run's artifacts. The first phase to fail
// aborts the run.
package bench

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/fsbench/blockio"
	"go.gazette.dev/fsbench/manifest"
	"go.gazette.dev/fsbench/metrics"
	"go.gazette.dev/fsbench/naming"
	"go.gazette.dev/fsbench/vfs"
)

// Clock reads the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall Clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// Driver runs a benchmark.
type Driver struct {
	fs    vfs.FS
	cfg   Config
	clock Clock
	out   io.Writer

	run *Run
}

// NewDriver returns a Driver of the Config against the FS, reading time from
// |clock| and writing its progress report to |out|.
func NewDriver(fs vfs.FS, cfg Config, clock Clock, out io.Writer) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{fs: fs, cfg: cfg, clock: clock, out: out}, nil
}

// phase is a timed unit of benchmark work.
type phase struct {
	state State
	name  string
	fn    func() (Result, error)
}

// phaseNameWidth to which phase names are padded in the progress report.
const phaseNameWidth = 19

// Run the benchmark. The returned Run is always non-nil; if the run was
// aborted, its Err is set and the remaining phases were not run.
func (d *Driver) Run() *Run {
	d.run = &Run{
		ID:      uuid.New(),
		Config:  d.cfg,
		Started: d.clock.Now(),
	}
	d.enter(StateInit)

	d.run.Seed = d.cfg.Seed
	if d.run.Seed == 0 {
		d.run.Seed = naming.SeedFromClock(d.run.Started)
	}
	var stream = naming.NewStream(d.run.Seed)

	if err := d.runAll(stream); err != nil {
		d.run.Err = err
		fmt.Fprintf(d.out, "\nError: %s\n", err)
	} else {
		fmt.Fprintf(d.out, "All tests done!\n")
	}

	if !d.cfg.KeepArtifacts {
		d.enter(StateCleanup)
		d.Cleanup()
	}
	d.enter(StateDone)
	d.run.Finished = d.clock.Now()

	metrics.RunsTotal.WithLabelValues(d.run.Status()).Inc()
	log.WithFields(log.Fields{
		"id":      d.run.ID,
		"seed":    d.run.Seed,
		"status":  d.run.Status(),
		"elapsed": d.run.Finished.Sub(d.run.Started),
	}).Info("benchmark run complete")

	return d.run
}

func (d *Driver) runAll(stream *naming.Stream) error {
	d.enter(StateManifests)
	fmt.Fprint(d.out, "Initialising...")

	var gen, err = d.generator(stream)
	if err == nil {
		err = manifest.Write(d.fs, d.cfg.CreateManifest, gen, 'C', d.cfg.Files)
	}
	if err == nil {
		err = manifest.Write(d.fs, d.cfg.RenameManifest, gen, 'R', d.cfg.Files)
	}
	if err != nil {
		return errors.WithMessage(err, "writing manifests")
	}
	fmt.Fprint(d.out, "done.\n")

	blocks, err := blockio.NewRunner(d.fs, d.cfg.blockConfig(), stream)
	if err != nil {
		return err
	}

	for _, p := range d.phases(blocks) {
		d.enter(p.state)

		var result = d.timed(p)
		d.run.Results = append(d.run.Results, result)

		if result.Err != nil {
			return errors.WithMessagef(result.Err, "TEST %d (%s)", result.Phase, result.Name)
		}
	}
	return nil
}

func (d *Driver) generator(stream *naming.Stream) (manifest.Namer, error) {
	if !d.cfg.UniqueNames {
		return naming.NewGenerator(stream), nil
	}
	return naming.NewUniqueGenerator(stream, max(2*d.cfg.Files, 1))
}

func (d *Driver) phases(blocks *blockio.Runner) []phase {
	var fromManifest = func(fn func() (manifest.Stats, error)) func() (Result, error) {
		return func() (Result, error) {
			var stats, err = fn()
			return Result{Ops: stats.Records, Failures: stats.Failures}, err
		}
	}
	var fromBlocks = func(fn func() (blockio.Stats, error)) func() (Result, error) {
		return func() (Result, error) {
			var stats, err = fn()
			return Result{Ops: stats.Ops, Bytes: stats.Bytes}, err
		}
	}

	return []phase{
		{StateCreateFiles, "Create files", fromManifest(func() (manifest.Stats, error) {
			return manifest.Create(d.fs, d.cfg.CreateManifest)
		})},
		{StateRenameFiles, "Rename files", fromManifest(func() (manifest.Stats, error) {
			return manifest.Rename(d.fs, d.cfg.CreateManifest, d.cfg.RenameManifest)
		})},
		{StateDeleteFiles, "Delete files", fromManifest(func() (manifest.Stats, error) {
			return manifest.Delete(d.fs, d.cfg.RenameManifest, d.cfg.StrictDelete)
		})},
		{StateCreateWrite, "Create and write", fromBlocks(blocks.CreateWrite)},
		{StateSequentialRead, "Sequential read", fromBlocks(blocks.SequentialRead)},
		{StateSequentialWrite, "Sequential write", fromBlocks(blocks.SequentialRewrite)},
		{StateRandomRead, "Random read", fromBlocks(blocks.RandomRead)},
		{StateRandomWrite, "Random write", fromBlocks(blocks.RandomWrite)},
	}
}

// timed runs the phase between two clock readings, and reports its timing.
func (d *Driver) timed(p phase) Result {
	var number = p.state.Phase()
	fmt.Fprintf(d.out, "TEST %d - %s", number, padDots(p.name, phaseNameWidth))

	var start = d.clock.Now()
	var result, err = p.fn()
	var end = d.clock.Now()

	result.Phase, result.Name, result.Err = number, p.name, err
	result.Start, result.End, result.Elapsed = start, end, end.Sub(start)

	if err != nil {
		fmt.Fprintf(d.out, " FAILED after %s seconds\n", result.Seconds())
	} else {
		fmt.Fprintf(d.out, " Took %s seconds\n", result.Seconds())
	}

	metrics.PhaseDurationSeconds.WithLabelValues(p.name).Set(result.Elapsed.Seconds())
	metrics.PhaseBytesTotal.WithLabelValues(p.name).Add(float64(result.Bytes))
	if failures := result.Failures; failures != 0 || err != nil {
		if err != nil {
			failures++
		}
		metrics.PhaseFailuresTotal.WithLabelValues(p.name).Add(float64(failures))
	}

	log.WithFields(log.Fields{
		"phase":    number,
		"name":     p.name,
		"elapsed":  result.Elapsed,
		"ops":      result.Ops,
		"bytes":    result.Bytes,
		"failures": result.Failures,
		"err":      err,
	}).Debug("phase complete")

	return result
}

// Cleanup removes the manifests and test file, ignoring failures.
func (d *Driver) Cleanup() {
	for _, name := range []string{d.cfg.TestFile, d.cfg.CreateManifest, d.cfg.RenameManifest} {
		if err := d.fs.Remove(name); err != nil {
			log.WithFields(log.Fields{"name": name, "err": err}).Debug("cleanup: failed to remove")
		}
	}
}

func (d *Driver) enter(s State) {
	d.run.States = append(d.run.States, s)
	log.WithField("state", s).Trace("entering state")
}

func padDots(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(".", width-len(s))
}
