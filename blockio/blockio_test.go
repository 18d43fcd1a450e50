package blockio

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.gazette.dev/fsbench/naming"
	"go.gazette.dev/fsbench/vfs"
	"go.gazette.dev/fsbench/vfs/vfstest"
)

func defaultConfig() Config {
	return Config{
		Path:         "TEST.DAT",
		BlockSize:    DefaultBlockSize,
		FileSize:     DefaultFileSize,
		RandomReads:  DefaultRandomReads,
		RandomWrites: DefaultRandomWrites,
	}
}

func newRunner(t *testing.T, fs vfs.FS, cfg Config, seed uint32) *Runner {
	var r, err = NewRunner(fs, cfg, naming.NewStream(seed))
	require.NoError(t, err)
	return r
}

func TestSequentialPhasesOfDefaultScenario(t *testing.T) {
	var fs = vfstest.New()
	var r = newRunner(t, fs, defaultConfig(), 1)

	var stats, err = r.CreateWrite()
	require.NoError(t, err)
	require.Equal(t, Stats{Ops: 256, Bytes: 1 << 20}, stats)
	require.Equal(t, int64(1<<20), fs.Size("TEST.DAT"))

	var writes = fs.Filter("write")
	require.Len(t, writes, 256)
	for _, w := range writes {
		require.Equal(t, 4096, w.N)
	}
	require.Equal(t, vfs.Write|vfs.CreateTruncate, fs.Filter("open")[0].Mode)

	fs.Reset()
	stats, err = r.SequentialRead()
	require.NoError(t, err)
	require.Equal(t, Stats{Ops: 256, Bytes: 1 << 20}, stats)
	require.Equal(t, vfs.Read, fs.Filter("open")[0].Mode)

	fs.Reset()
	stats, err = r.SequentialRewrite()
	require.NoError(t, err)
	require.Equal(t, Stats{Ops: 256, Bytes: 1 << 20}, stats)
	require.Equal(t, vfs.Write|vfs.OpenExisting, fs.Filter("open")[0].Mode)
	require.Equal(t, 1, fs.Count("close"))
}

func TestSequentialBlockAccounting(t *testing.T) {
	for _, tc := range []struct {
		size  int64
		block int
		ops   int
	}{
		{10000, 4096, 3},
		{8192, 4096, 2},
		{4097, 4096, 2},
		{512, 512, 1},
		{1000, 7, 143},
	} {
		var fs = vfstest.New()
		var cfg = defaultConfig()
		cfg.FileSize, cfg.BlockSize = tc.size, tc.block
		var r = newRunner(t, fs, cfg, 1)

		var stats, err = r.CreateWrite()
		require.NoError(t, err)
		require.Equal(t, Stats{Ops: tc.ops, Bytes: tc.size}, stats)
		require.Equal(t, tc.size, fs.Size("TEST.DAT"))

		stats, err = r.SequentialRead()
		require.NoError(t, err)
		require.Equal(t, Stats{Ops: tc.ops, Bytes: tc.size}, stats)

		var sum int
		for _, w := range fs.Filter("write") {
			sum += w.N
		}
		require.Equal(t, int(tc.size), sum)
	}
}

func TestRewriteDoesNotTruncate(t *testing.T) {
	var fs = vfstest.New()
	var cfg = defaultConfig()
	cfg.FileSize = 8192
	require.NoError(t, fs.WriteFile("TEST.DAT", make([]byte, 10000)))

	var stats, err = newRunner(t, fs, cfg, 1).SequentialRewrite()
	require.NoError(t, err)
	require.Equal(t, Stats{Ops: 2, Bytes: 8192}, stats)
	require.Equal(t, int64(10000), fs.Size("TEST.DAT"))

	// Rewrite requires an existing file.
	_, err = newRunner(t, vfstest.New(), cfg, 1).SequentialRewrite()
	require.True(t, errors.Is(err, vfs.ErrOpen))
}

func TestShortWriteIsFatal(t *testing.T) {
	for _, short := range []struct {
		n   int
		err error
	}{
		{0, nil},                       // Zero-length write without error.
		{100, nil},                     // Partial write without error.
		{0, errors.New("disk full")},   // Explicit failure.
		{4096, errors.New("io error")}, // Full length, but failed.
	} {
		var fs = vfstest.New()
		var writes int
		fs.WriteFunc = func(f vfs.File, p []byte) (int, error) {
			if writes++; writes == 3 {
				return short.n, short.err
			}
			return f.Write(p)
		}

		var stats, err = newRunner(t, fs, defaultConfig(), 1).CreateWrite()
		require.True(t, errors.Is(err, vfs.ErrShortIO))
		require.Contains(t, err.Error(), "TEST.DAT")
		require.Equal(t, 2, stats.Ops)
		require.Equal(t, int64(2*4096+short.n), stats.Bytes)

		// The loop stopped at once, and the file was released.
		require.Equal(t, 3, fs.Count("write"))
		require.Equal(t, 1, fs.Count("close"))
	}
}

func TestRandomPhasesOfDefaultScenario(t *testing.T) {
	var fs = vfstest.New()
	var cfg = defaultConfig()
	var r = newRunner(t, fs, cfg, 77)

	var _, err = r.CreateWrite()
	require.NoError(t, err)

	for _, phase := range []struct {
		run  func() (Stats, error)
		op   string
		mode vfs.Mode
	}{
		{r.RandomRead, "read", vfs.Read},
		{r.RandomWrite, "write", vfs.Write | vfs.OpenExisting},
	} {
		fs.Reset()

		var stats, err = phase.run()
		require.NoError(t, err)
		require.Equal(t, Stats{Ops: 256, Bytes: 256 * 4096}, stats)
		require.Equal(t, phase.mode, fs.Filter("open")[0].Mode)

		var seeks = fs.Filter("seek")
		require.Len(t, seeks, 256)
		require.Len(t, fs.Filter(phase.op), 256)

		for _, s := range seeks {
			require.Zero(t, s.Offset%4096)
			require.GreaterOrEqual(t, s.Offset, int64(0))
			require.LessOrEqual(t, s.Offset, int64(1044480))
		}
		// Seeks and transfers strictly alternate.
		for i, call := range fs.Calls[1 : len(fs.Calls)-1] {
			if i%2 == 0 {
				require.Equal(t, "seek", call.Op)
			} else {
				require.Equal(t, phase.op, call.Op)
				require.Equal(t, 4096, call.N)
			}
		}
	}
	require.Equal(t, int64(1<<20), fs.Size("TEST.DAT"))
}

func TestRandomOffsetsAreSeedDeterministic(t *testing.T) {
	var offsets = func(seed uint32) []int64 {
		var fs = vfstest.New()
		var r = newRunner(t, fs, defaultConfig(), seed)
		var _, err = r.CreateWrite()
		require.NoError(t, err)
		_, err = r.RandomRead()
		require.NoError(t, err)

		var out []int64
		for _, s := range fs.Filter("seek") {
			out = append(out, s.Offset)
		}
		return out
	}
	require.Equal(t, offsets(5), offsets(5))
	require.NotEqual(t, offsets(5), offsets(6))
}

func TestRandomPhaseFailures(t *testing.T) {
	var cfg = defaultConfig()
	cfg.RandomReads, cfg.RandomWrites = 16, 16

	// Seek failures are fatal.
	var fs = vfstest.New()
	var r = newRunner(t, fs, cfg, 1)
	var _, err = r.CreateWrite()
	require.NoError(t, err)

	fs.SeekFunc = func(vfs.File, int64) error { return errors.New("bad seek") }
	fs.Reset()

	stats, err := r.RandomWrite()
	require.True(t, errors.Is(err, vfs.ErrSeek))
	require.Equal(t, Stats{}, stats)
	require.Equal(t, 1, fs.Count("close"))

	// Short reads are fatal. Here, the file is a single block long.
	fs = vfstest.New()
	require.NoError(t, fs.WriteFile("TEST.DAT", make([]byte, 4096)))
	r = newRunner(t, fs, cfg, 1)

	_, err = r.RandomRead()
	require.True(t, errors.Is(err, vfs.ErrShortIO))
	require.Equal(t, 1, fs.Count("close"))

	// Open failures are fatal.
	_, err = newRunner(t, vfstest.New(), cfg, 1).RandomRead()
	require.True(t, errors.Is(err, vfs.ErrOpen))
	_, err = newRunner(t, vfstest.New(), cfg, 1).SequentialRead()
	require.True(t, errors.Is(err, vfs.ErrOpen))
}

func TestConfigValidation(t *testing.T) {
	var cfg = defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, int64(256), cfg.Blocks())

	for _, mutate := range []func(*Config){
		func(c *Config) { c.Path = "" },
		func(c *Config) { c.BlockSize = 0 },
		func(c *Config) { c.FileSize = 100 },
		func(c *Config) { c.RandomReads = -1 },
	} {
		var c = defaultConfig()
		mutate(&c)
		require.Error(t, c.Validate())

		var _, err = NewRunner(vfstest.New(), c, naming.NewStream(1))
		require.Error(t, err)
	}
}
