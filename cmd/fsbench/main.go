package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	mbp "go.gazette.dev/fsbench/mainboilerplate"
	"go.gazette.dev/fsbench/metrics"
)

const iniFilename = "fsbench.ini"

// Config is the top-level configuration object of fsbench.
var Config = new(struct {
	Bench struct {
		Target         string `long:"target" env:"TARGET" default:"." description:"Directory or URL (file:///path?mkdir=true&sync=true, mem://) to benchmark"`
		Label          string `long:"label" env:"LABEL" description:"Label of the run. Auto-generated if not set"`
		Files          int    `long:"files" env:"FILES" default:"256" description:"Number of files created, renamed, and deleted"`
		BlockSize      string `long:"block-size" env:"BLOCK_SIZE" default:"4KiB" description:"Block size of block I/O phases"`
		FileSize       string `long:"file-size" env:"FILE_SIZE" default:"1MiB" description:"Size of the block I/O test file"`
		RandomReads    int    `long:"random-reads" env:"RANDOM_READS" default:"256" description:"Number of random block reads"`
		RandomWrites   int    `long:"random-writes" env:"RANDOM_WRITES" default:"256" description:"Number of random block writes"`
		Seed           uint32 `long:"seed" env:"SEED" default:"0" description:"Seed of generated names and block offsets. Derived from the clock if zero"`
		UniqueNames    bool   `long:"unique-names" env:"UNIQUE_NAMES" description:"Regenerate colliding file names"`
		StrictDelete   bool   `long:"strict-delete" env:"STRICT_DELETE" description:"Fail the run on the first failed delete"`
		KeepArtifacts  bool   `long:"keep-artifacts" env:"KEEP_ARTIFACTS" description:"Don't remove manifests and the test file after the run"`
		CreateManifest string `long:"create-manifest" env:"CREATE_MANIFEST" default:"CREATE.TXT" description:"Name of the manifest of created files"`
		RenameManifest string `long:"rename-manifest" env:"RENAME_MANIFEST" default:"RENAME.TXT" description:"Name of the manifest of renamed files"`
		TestFile       string `long:"test-file" env:"TEST_FILE" default:"TEST.DAT" description:"Name of the block I/O test file"`
	} `group:"Bench" namespace:"bench" env-namespace:"BENCH"`

	Output struct {
		Format  string `long:"format" env:"FORMAT" default:"table" choice:"table" choice:"yaml" choice:"json" description:"Format of reports"`
		History string `long:"history" env:"HISTORY" description:"DSN of the run history (sqlite:///path/to/file.db or postgres://...). Disabled if not set"`
	} `group:"Output" namespace:"output" env-namespace:"OUTPUT"`

	Metrics     metrics.ExportConfig  `group:"Metrics" namespace:"metrics" env-namespace:"METRICS"`
	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`
})

func main() {
	var parser = flags.NewParser(Config, flags.Default)

	parser.LongDescription = `fsbench is a filesystem micro-benchmark. It times the creation,
renaming and deletion of many small files, and sequential and random block
I/O of a test file, within a target directory.

Optionally configure fsbench with a '` + iniFilename + `' file in the current working directory,
or with '~/.config/fsbench/` + iniFilename + `'. Use the 'print-config' sub-command to inspect
the tool's current configuration.
`
	prometheus.MustRegister(metrics.FsBenchCollectors()...)

	var registry = mbp.NewCommandRegistry()
	registry.AddCommand("", "run", "Run the benchmark", `
Run the benchmark against the --bench.target directory. Progress of each phase
is written to stdout as it completes, followed by a report of the run in
--output.format. fsbench exits non-zero if any phase fails.
`, &cmdRun{})
	registry.AddCommand("", "history", "Inspect and manage recorded runs", "", &struct{}{})
	registry.AddCommand("history", "list", "List recorded runs, newest first", "", &cmdHistoryList{})
	registry.AddCommand("history", "prune", "Remove all but the newest recorded runs", "", &cmdHistoryPrune{})

	mbp.Must(registry.AddCommands("", parser.Command, true), "could not add subcommand")
	mbp.AddPrintConfigCmd(parser, iniFilename)

	os.Args = withDefaultCommand(parser, os.Args, "run")
	mbp.MustParseConfig(parser, iniFilename)
}

// withDefaultCommand appends command |def| to |args| if no other command of
// the Parser is named, so that flags alone run the benchmark. Requests for
// help are left alone.
func withDefaultCommand(parser *flags.Parser, args []string, def string) []string {
	for _, arg := range args[1:] {
		if arg == "-h" || arg == "--help" || arg == "--" {
			return args
		} else if parser.Find(arg) != nil {
			return args
		}
	}
	return append(args, def)
}
