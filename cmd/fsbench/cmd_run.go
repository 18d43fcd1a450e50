package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	petname "github.com/dustinkirkland/golang-petname"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/fsbench/bench"
	mbp "go.gazette.dev/fsbench/mainboilerplate"
	"go.gazette.dev/fsbench/metrics"
	"go.gazette.dev/fsbench/results"
	"go.gazette.dev/fsbench/vfs"
)

type cmdRun struct{}

func (cmdRun) Execute([]string) error {
	defer mbp.InitDiagnosticsAndRecover(Config.Diagnostics)()
	mbp.InitLog(Config.Log)

	log.WithField("config", Config).Debug("starting fsbench")

	var run, err = runBenchmark(context.Background(), os.Stdout, prometheus.DefaultGatherer)
	mbp.Must(err, "failed to run benchmark")

	if run.Failed() {
		os.Exit(1)
	}
	return nil
}

// runBenchmark runs the configured benchmark, reports it to |out|, and
// records and exports the outcome. Failures of the benchmark itself are
// returned within the Run. A returned error is a failure to set up the
// benchmark, or to record or export it.
func runBenchmark(ctx context.Context, out io.Writer, g prometheus.Gatherer) (*bench.Run, error) {
	var cfg, err = benchConfig()
	if err != nil {
		return nil, err
	}
	target, err := vfs.OpenTarget(Config.Bench.Target)
	if err != nil {
		return nil, err
	}
	driver, err := bench.NewDriver(vfs.RecordedFS{FS: target.FS()}, cfg, bench.SystemClock{}, out)
	if err != nil {
		return nil, err
	}

	var label = Config.Bench.Label
	if label == "" {
		label = petname.Generate(2, "-")
	}
	log.WithFields(log.Fields{
		"label":  label,
		"target": target.String(),
		"files":  cfg.Files,
		"block":  humanize.IBytes(uint64(cfg.BlockSize)),
		"size":   humanize.IBytes(uint64(cfg.FileSize)),
	}).Info("running benchmark")

	var run = driver.Run()
	run.Label, run.Target = label, target.String()

	var report = results.NewReport(run)
	fmt.Fprintln(out)
	if err = results.Render(out, Config.Output.Format, report); err != nil {
		return run, errors.WithMessage(err, "rendering report")
	}

	if Config.Output.History != "" {
		if err = recordHistory(ctx, report); err != nil {
			return run, err
		}
	}

	var grouping = map[string]string{"label": label, "run": report.ID}
	if err = metrics.Export(Config.Metrics, g, grouping); err != nil {
		return run, errors.WithMessage(err, "exporting metrics")
	}
	if samples, err := metrics.Snapshot(g, "fsbench_"); err == nil {
		for _, s := range samples {
			log.WithFields(log.Fields{"metric": s.Name, "labels": s.Labels, "value": s.Value}).Debug("metric")
		}
	}
	return run, nil
}

func recordHistory(ctx context.Context, report results.Report) error {
	var h, err = results.OpenHistory(ctx, Config.Output.History)
	if err != nil {
		return err
	}
	defer h.Close()

	return h.Record(ctx, report)
}

// benchConfig builds the bench.Config of the parsed Config.
func benchConfig() (bench.Config, error) {
	var c = Config.Bench
	var out = bench.Config{
		Files:          c.Files,
		CreateManifest: c.CreateManifest,
		RenameManifest: c.RenameManifest,
		TestFile:       c.TestFile,
		RandomReads:    c.RandomReads,
		RandomWrites:   c.RandomWrites,
		Seed:           c.Seed,
		UniqueNames:    c.UniqueNames,
		StrictDelete:   c.StrictDelete,
		KeepArtifacts:  c.KeepArtifacts,
	}

	if b, err := humanize.ParseBytes(c.BlockSize); err != nil {
		return out, errors.WithMessage(err, "parsing --bench.block-size")
	} else if b > 1<<30 {
		return out, fmt.Errorf("--bench.block-size %s is too large", c.BlockSize)
	} else {
		out.BlockSize = int(b)
	}
	if b, err := humanize.ParseBytes(c.FileSize); err != nil {
		return out, errors.WithMessage(err, "parsing --bench.file-size")
	} else if b > 1<<40 {
		return out, fmt.Errorf("--bench.file-size %s is too large", c.FileSize)
	} else {
		out.FileSize = int64(b)
	}
	return out, out.Validate()
}
