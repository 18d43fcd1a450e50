package bench

import (
	"fmt"

	"go.gazette.dev/fsbench/blockio"
)

// Config of a benchmark run.
type Config struct {
	// Files is the number of records of each manifest, and thus the number
	// of files created, renamed and deleted.
	Files int
	// CreateManifest, RenameManifest and TestFile are names of the artifacts
	// of a run, relative to the target.
	CreateManifest string
	RenameManifest string
	TestFile       string
	// BlockSize and FileSize of block I/O phases.
	BlockSize int
	FileSize  int64
	// RandomReads and RandomWrites are iteration counts of random phases.
	RandomReads  int
	RandomWrites int
	// Seed of the run's pseudo-random stream. If zero, a seed is derived
	// from the clock.
	Seed uint32
	// UniqueNames regenerates colliding names.
	UniqueNames bool
	// StrictDelete fails the delete phase on the first failed delete.
	StrictDelete bool
	// KeepArtifacts skips the removal of manifests and the test file.
	KeepArtifacts bool
}

// DefaultConfig returns the Config of the standard benchmark.
func DefaultConfig() Config {
	return Config{
		Files:          256,
		CreateManifest: "CREATE.TXT",
		RenameManifest: "RENAME.TXT",
		TestFile:       "TEST.DAT",
		BlockSize:      blockio.DefaultBlockSize,
		FileSize:       blockio.DefaultFileSize,
		RandomReads:    blockio.DefaultRandomReads,
		RandomWrites:   blockio.DefaultRandomWrites,
	}
}

// Validate returns an error if the Config is not usable.
func (c Config) Validate() error {
	if c.Files < 0 {
		return fmt.Errorf("invalid Files (%d; expected >= 0)", c.Files)
	}
	var seen = make(map[string]bool)
	for _, name := range []string{c.CreateManifest, c.RenameManifest, c.TestFile} {
		if name == "" {
			return fmt.Errorf("expected manifest and test file names")
		} else if seen[name] {
			return fmt.Errorf("artifact name %q is used more than once", name)
		}
		seen[name] = true
	}
	return c.blockConfig().Validate()
}

func (c Config) blockConfig() blockio.Config {
	return blockio.Config{
		Path:         c.TestFile,
		BlockSize:    c.BlockSize,
		FileSize:     c.FileSize,
		RandomReads:  c.RandomReads,
		RandomWrites: c.RandomWrites,
	}
}
