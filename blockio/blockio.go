// Package blockio runs the block I/O phases of a benchmark against a single
// test file: a sequential create-and-write, a sequential read, a sequential
// in-place rewrite, and randomly addressed block reads and writes.
package blockio

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"go.gazette.dev/fsbench/vfs"
)

// Defaults of Config.
const (
	DefaultBlockSize    = 4096
	DefaultFileSize     = 1 << 20
	DefaultRandomReads  = 256
	DefaultRandomWrites = 256
)

// Config of block I/O phases.
type Config struct {
	// Path of the test file.
	Path string
	// BlockSize is the unit of each read and write.
	BlockSize int
	// FileSize is the target size of the test file.
	FileSize int64
	// RandomReads and RandomWrites are iteration counts of the random phases.
	RandomReads  int
	RandomWrites int
}

// Blocks is the number of whole blocks addressable by random phases.
func (c Config) Blocks() int64 { return c.FileSize / int64(c.BlockSize) }

// Validate returns an error if the Config is not usable.
func (c Config) Validate() error {
	switch {
	case c.Path == "":
		return fmt.Errorf("expected test file path")
	case c.BlockSize <= 0:
		return fmt.Errorf("invalid block size (%d; expected > 0)", c.BlockSize)
	case c.FileSize < int64(c.BlockSize):
		return fmt.Errorf("file size %d is smaller than block size %d", c.FileSize, c.BlockSize)
	case c.RandomReads < 0 || c.RandomWrites < 0:
		return fmt.Errorf("invalid random iteration counts (%d, %d)", c.RandomReads, c.RandomWrites)
	}
	return nil
}

// Intner draws pseudo-random block indices.
type Intner interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// Stats of a block I/O phase.
type Stats struct {
	// Ops is the number of reads or writes which transferred data.
	Ops int
	// Bytes transferred.
	Bytes int64
}

// Runner runs block I/O phases. Phases share a single scratch buffer, and
// must be run sequentially.
type Runner struct {
	fs  vfs.FS
	cfg Config
	rnd Intner
	buf []byte
}

// NewRunner returns a Runner of the validated Config, which draws random
// block indices from |rnd|.
func NewRunner(fs vfs.FS, cfg Config, rnd Intner) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		fs:  fs,
		cfg: cfg,
		rnd: rnd,
		buf: make([]byte, cfg.BlockSize),
	}, nil
}

// CreateWrite creates (or truncates) the test file, and sequentially writes
// zeroed blocks until it reaches its target size.
func (r *Runner) CreateWrite() (Stats, error) {
	return r.sequentialWrite(vfs.Write|vfs.CreateTruncate, "create")
}

// SequentialRewrite sequentially overwrites the existing test file in place,
// from offset zero, without truncating it.
func (r *Runner) SequentialRewrite() (Stats, error) {
	return r.sequentialWrite(vfs.Write|vfs.OpenExisting, "open")
}

func (r *Runner) sequentialWrite(mode vfs.Mode, op string) (stats Stats, err error) {
	var f vfs.File
	if f, err = r.fs.Open(r.cfg.Path, mode); err != nil {
		return stats, vfs.NewOpError(op, r.cfg.Path, vfs.ErrOpen, err)
	}
	defer closeFile(f, &err)

	clear(r.buf)

	for stats.Bytes < r.cfg.FileSize {
		var want = int(min(int64(len(r.buf)), r.cfg.FileSize-stats.Bytes))

		var n, err = f.Write(r.buf[:want])
		stats.Bytes += int64(n)

		if err != nil || n != want {
			return stats, vfs.ShortIO("write", r.cfg.Path, n, want, err)
		}
		stats.Ops++
	}
	return stats, nil
}

// SequentialRead reads the test file in blocks until a zero-length read.
func (r *Runner) SequentialRead() (stats Stats, err error) {
	var f vfs.File
	if f, err = r.fs.Open(r.cfg.Path, vfs.Read); err != nil {
		return stats, vfs.NewOpError("open", r.cfg.Path, vfs.ErrOpen, err)
	}
	defer closeFile(f, &err)

	for {
		var n, err = f.Read(r.buf)
		if n != 0 {
			stats.Ops++
			stats.Bytes += int64(n)
		}

		if err == io.EOF || (err == nil && n == 0) {
			return stats, nil
		} else if err != nil {
			return stats, vfs.ShortIO("read", r.cfg.Path, n, len(r.buf), err)
		}
	}
}

// RandomRead reads RandomReads whole blocks at pseudo-randomly chosen block
// indices. A failed seek or a short read is fatal.
func (r *Runner) RandomRead() (Stats, error) {
	return r.random(vfs.Read, r.cfg.RandomReads, "read", func(f vfs.File) (int, error) {
		return f.Read(r.buf)
	})
}

// RandomWrite writes RandomWrites whole blocks at pseudo-randomly chosen
// block indices. A failed seek or a short write is fatal.
func (r *Runner) RandomWrite() (Stats, error) {
	clear(r.buf)

	return r.random(vfs.Write|vfs.OpenExisting, r.cfg.RandomWrites, "write", func(f vfs.File) (int, error) {
		return f.Write(r.buf)
	})
}

func (r *Runner) random(mode vfs.Mode, count int, op string, fn func(vfs.File) (int, error)) (stats Stats, err error) {
	var f vfs.File
	if f, err = r.fs.Open(r.cfg.Path, mode); err != nil {
		return stats, vfs.NewOpError("open", r.cfg.Path, vfs.ErrOpen, err)
	}
	defer closeFile(f, &err)

	var blocks = int(r.cfg.Blocks())

	for i := 0; i != count; i++ {
		var offset = int64(r.rnd.Intn(blocks)) * int64(r.cfg.BlockSize)

		if err = f.Seek(offset); err != nil {
			return stats, vfs.NewOpError("seek", r.cfg.Path, vfs.ErrSeek,
				fmt.Errorf("to offset %d: %w", offset, err))
		}

		var n int
		n, err = fn(f)
		stats.Bytes += int64(n)

		// A full-block read may legitimately report io.EOF alongside its
		// data, if the block is the last of the file.
		if n == len(r.buf) && err == io.EOF {
			err = nil
		}
		if err != nil || n != len(r.buf) {
			return stats, vfs.ShortIO(op, r.cfg.Path, n, len(r.buf), err)
		}
		stats.Ops++
	}
	return stats, nil
}

// closeFile closes |f|, surfacing a failed close only if no other error
// occurred.
func closeFile(f vfs.File, err *error) {
	if closeErr := f.Close(); closeErr != nil {
		log.WithFields(log.Fields{"name": f.Name(), "err": closeErr}).Debug("close failed")

		if *err == nil {
			*err = vfs.NewOpError("close", f.Name(), vfs.ErrShortIO, closeErr)
		}
	}
}
