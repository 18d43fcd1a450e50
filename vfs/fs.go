// Package vfs is the host file API which benchmark phases drive: open, close,
// read, write, absolute seek, rename and delete. Implementations adapt an
// afero.Fs, so a benchmark may target a directory of the OS filesystem, an
// in-memory filesystem, or any other afero backend.
package vfs

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FS is the minimal filesystem capability driven by a benchmark.
type FS interface {
	// Open the named file in the given Mode.
	Open(name string, mode Mode) (File, error)
	// Rename |oldname| to |newname|.
	Rename(oldname, newname string) error
	// Remove the named file.
	Remove(name string) error
}

// File is an open file of an FS.
type File interface {
	// Read up to len(p) bytes. A zero-length read with io.EOF marks the end
	// of the file.
	io.Reader
	// Write len(p) bytes. Fewer bytes written is a short write.
	io.Writer
	// Seek to the absolute |offset|.
	Seek(offset int64) error
	io.Closer
	// Name of the file, as it was opened.
	Name() string
}

// Options of an FS built by New.
type Options struct {
	// Sync flushes files opened for writing to stable storage before Close.
	Sync bool
}

// New returns an FS backed by the afero.Fs.
func New(fs afero.Fs, opts Options) FS { return &aferoFS{Fs: fs, opts: opts} }

type aferoFS struct {
	afero.Fs
	opts Options
}

// filePerm of files created by the benchmark.
const filePerm os.FileMode = 0644

func (a *aferoFS) Open(name string, mode Mode) (File, error) {
	var f, err = a.Fs.OpenFile(name, mode.Flags(), filePerm)
	if err != nil {
		return nil, err
	}
	return &aferoFile{File: f, name: name, sync: a.opts.Sync && mode.Writable()}, nil
}

func (a *aferoFS) Rename(oldname, newname string) error { return a.Fs.Rename(oldname, newname) }
func (a *aferoFS) Remove(name string) error             { return a.Fs.Remove(name) }

type aferoFile struct {
	afero.File
	name string
	sync bool
}

func (f *aferoFile) Name() string { return f.name }

func (f *aferoFile) Seek(offset int64) error {
	var got, err = f.File.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	} else if got != offset {
		return errors.Errorf("seek landed at offset %d, not %d", got, offset)
	}
	return nil
}

func (f *aferoFile) Close() error {
	if f.sync {
		if err := f.File.Sync(); err != nil {
			_ = f.File.Close()
			return errors.WithMessage(err, "sync")
		}
	}
	return f.File.Close()
}
