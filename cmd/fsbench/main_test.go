package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.gazette.dev/fsbench/metrics"
)

func parseConfig(t *testing.T, args ...string) {
	var _, err = flags.NewParser(Config, flags.Default).ParseArgs(args)
	require.NoError(t, err)
}

func newRegistry() *prometheus.Registry {
	var reg = prometheus.NewRegistry()
	reg.MustRegister(metrics.FsBenchCollectors()...)
	return reg
}

func TestRunRecordAndListHistory(t *testing.T) {
	var ctx = context.Background()
	var dir = t.TempDir()
	var textfile = filepath.Join(dir, "fsbench.prom")

	parseConfig(t,
		"--bench.target=mem://",
		"--bench.files=16",
		"--bench.block-size=1KiB",
		"--bench.file-size=64KiB",
		"--bench.random-reads=8",
		"--bench.random-writes=8",
		"--bench.seed=42",
		"--bench.label=unit-test",
		"--output.format=yaml",
		"--output.history=sqlite://"+filepath.Join(dir, "history.db"),
		"--metrics.textfile="+textfile,
	)

	var out bytes.Buffer
	var run, err = runBenchmark(ctx, &out, newRegistry())
	require.NoError(t, err)
	require.False(t, run.Failed())
	require.Equal(t, "unit-test", run.Label)
	require.Equal(t, uint32(42), run.Seed)

	require.Contains(t, out.String(), "Initialising...done.\n")
	require.Contains(t, out.String(), "All tests done!\n")
	require.Contains(t, out.String(), "label: unit-test")
	require.Contains(t, out.String(), "name: Random write")

	var prom, _ = os.ReadFile(textfile)
	require.Contains(t, string(prom), `fsbench_runs_total{status="ok"}`)
	require.Contains(t, string(prom), `fsbench_fs_ops_total{op="rename",status="ok"}`)

	// A second run is recorded as well, and listed first.
	parseConfig(t,
		"--bench.target=mem://",
		"--bench.files=4",
		"--bench.block-size=1KiB",
		"--bench.file-size=4KiB",
		"--bench.label=second",
		"--output.history=sqlite://"+filepath.Join(dir, "history.db"),
	)
	out.Reset()
	second, err := runBenchmark(ctx, &out, newRegistry())
	require.NoError(t, err)
	require.Contains(t, out.String(), "Create and write")

	var list = cmdHistoryList{Limit: 0}
	out.Reset()
	Config.Output.Format = "json"
	require.NoError(t, list.list(ctx, &out))
	require.Regexp(t, `(?s)"id": "`+second.ID.String()+`".*"id": "`+run.ID.String()+`"`, out.String())

	var prune = cmdHistoryPrune{Keep: 1}
	out.Reset()
	require.NoError(t, prune.prune(ctx, &out))
	require.Equal(t, "Removed 1 runs.\n", out.String())
}

func TestBenchConfigFromFlags(t *testing.T) {
	parseConfig(t)
	var cfg, err = benchConfig()
	require.NoError(t, err)
	require.Equal(t, 256, cfg.Files)
	require.Equal(t, 4096, cfg.BlockSize)
	require.Equal(t, int64(1<<20), cfg.FileSize)
	require.Equal(t, "CREATE.TXT", cfg.CreateManifest)
	require.Equal(t, uint32(0), cfg.Seed)

	parseConfig(t, "--bench.block-size=lots")
	_, err = benchConfig()
	require.Error(t, err)

	parseConfig(t, "--bench.block-size=2MiB")
	_, err = benchConfig()
	require.Error(t, err) // Larger than the file.

	parseConfig(t, "--bench.target=ftp://example.com")
	_, err = runBenchmark(context.Background(), &bytes.Buffer{}, newRegistry())
	require.Error(t, err)
}

func TestCommandDefaultsToRun(t *testing.T) {
	var parser = flags.NewParser(&struct{}{}, flags.None)
	for _, name := range []string{"run", "history", "print-config"} {
		var _, err = parser.AddCommand(name, "", "", &struct{}{})
		require.NoError(t, err)
	}

	for _, tc := range []struct {
		args, expect []string
	}{
		{[]string{"fsbench"}, []string{"fsbench", "run"}},
		{[]string{"fsbench", "--bench.target=/mnt/sd"}, []string{"fsbench", "--bench.target=/mnt/sd", "run"}},
		{[]string{"fsbench", "--bench.files", "16"}, []string{"fsbench", "--bench.files", "16", "run"}},
		{[]string{"fsbench", "run", "--bench.seed=3"}, []string{"fsbench", "run", "--bench.seed=3"}},
		{[]string{"fsbench", "--log.level=debug", "history", "list"}, []string{"fsbench", "--log.level=debug", "history", "list"}},
		{[]string{"fsbench", "print-config"}, []string{"fsbench", "print-config"}},
		{[]string{"fsbench", "--help"}, []string{"fsbench", "--help"}},
	} {
		require.Equal(t, tc.expect, withDefaultCommand(parser, tc.args, "run"))
	}
}

func TestHistoryRequiresDSN(t *testing.T) {
	parseConfig(t)
	Config.Output.History = ""

	var list cmdHistoryList
	require.EqualError(t, list.list(context.Background(), &bytes.Buffer{}), "expected --output.history")
}
