// Package vfstest provides a vfs.FS for testing, which records every
// operation and allows tests to customize or fail any of them.
package vfstest

import (
	"os"

	"github.com/spf13/afero"
	"go.gazette.dev/fsbench/vfs"
)

// Call is an operation recorded by a CallbackFS.
type Call struct {
	Op     string // One of "open", "read", "write", "seek", "close", "rename", "remove".
	Name   string // File name. For "rename", the source.
	Target string // Rename destination.
	Mode   vfs.Mode
	Offset int64 // Seek offset.
	N      int   // Bytes transferred by a read or write.
	Err    error
}

// CallbackFS implements vfs.FS for testing. Operations delegate to Base,
// unless a callback for the operation is set, in which case the callback is
// invoked with the delegate. Every operation is appended to Calls.
type CallbackFS struct {
	// Mem is the in-memory filesystem backing Base.
	Mem  afero.Fs
	Base vfs.FS

	OpenFunc   func(base vfs.FS, name string, mode vfs.Mode) (vfs.File, error)
	RenameFunc func(base vfs.FS, oldname, newname string) error
	RemoveFunc func(base vfs.FS, name string) error
	ReadFunc   func(f vfs.File, p []byte) (int, error)
	WriteFunc  func(f vfs.File, p []byte) (int, error)
	SeekFunc   func(f vfs.File, offset int64) error
	CloseFunc  func(f vfs.File) error

	Calls []Call
}

// New returns a CallbackFS over an empty, in-memory filesystem.
func New() *CallbackFS {
	var mem = afero.NewMemMapFs()
	return &CallbackFS{Mem: mem, Base: vfs.New(mem, vfs.Options{})}
}

// Open calls OpenFunc if set, otherwise opens from Base.
func (c *CallbackFS) Open(name string, mode vfs.Mode) (vfs.File, error) {
	var f vfs.File
	var err error

	if c.OpenFunc != nil {
		f, err = c.OpenFunc(c.Base, name, mode)
	} else {
		f, err = c.Base.Open(name, mode)
	}
	c.Calls = append(c.Calls, Call{Op: "open", Name: name, Mode: mode, Err: err})

	if err != nil {
		return nil, err
	}
	return &callbackFile{File: f, fs: c}, nil
}

// Rename calls RenameFunc if set, otherwise renames within Base.
func (c *CallbackFS) Rename(oldname, newname string) error {
	var err error
	if c.RenameFunc != nil {
		err = c.RenameFunc(c.Base, oldname, newname)
	} else {
		err = c.Base.Rename(oldname, newname)
	}
	c.Calls = append(c.Calls, Call{Op: "rename", Name: oldname, Target: newname, Err: err})
	return err
}

// Remove calls RemoveFunc if set, otherwise removes from Base.
func (c *CallbackFS) Remove(name string) error {
	var err error
	if c.RemoveFunc != nil {
		err = c.RemoveFunc(c.Base, name)
	} else {
		err = c.Base.Remove(name)
	}
	c.Calls = append(c.Calls, Call{Op: "remove", Name: name, Err: err})
	return err
}

// Filter returns recorded Calls of the operation.
func (c *CallbackFS) Filter(op string) []Call {
	var out []Call
	for _, call := range c.Calls {
		if call.Op == op {
			out = append(out, call)
		}
	}
	return out
}

// Count returns the number of recorded Calls of the operation.
func (c *CallbackFS) Count(op string) int { return len(c.Filter(op)) }

// Reset clears recorded Calls.
func (c *CallbackFS) Reset() { c.Calls = nil }

// Exists is true if the file exists within Mem.
func (c *CallbackFS) Exists(name string) bool {
	var ok, err = afero.Exists(c.Mem, name)
	return ok && err == nil
}

// Size returns the size of the file within Mem, or -1 if it doesn't exist.
func (c *CallbackFS) Size(name string) int64 {
	if info, err := c.Mem.Stat(name); err != nil {
		return -1
	} else {
		return info.Size()
	}
}

// WriteFile writes |content| to the named file of Mem.
func (c *CallbackFS) WriteFile(name string, content []byte) error {
	return afero.WriteFile(c.Mem, name, content, os.FileMode(0644))
}

type callbackFile struct {
	vfs.File
	fs *CallbackFS
}

func (f *callbackFile) Read(p []byte) (n int, err error) {
	if f.fs.ReadFunc != nil {
		n, err = f.fs.ReadFunc(f.File, p)
	} else {
		n, err = f.File.Read(p)
	}
	f.fs.Calls = append(f.fs.Calls, Call{Op: "read", Name: f.Name(), N: n, Err: err})
	return
}

func (f *callbackFile) Write(p []byte) (n int, err error) {
	if f.fs.WriteFunc != nil {
		n, err = f.fs.WriteFunc(f.File, p)
	} else {
		n, err = f.File.Write(p)
	}
	f.fs.Calls = append(f.fs.Calls, Call{Op: "write", Name: f.Name(), N: n, Err: err})
	return
}

func (f *callbackFile) Seek(offset int64) error {
	var err error
	if f.fs.SeekFunc != nil {
		err = f.fs.SeekFunc(f.File, offset)
	} else {
		err = f.File.Seek(offset)
	}
	f.fs.Calls = append(f.fs.Calls, Call{Op: "seek", Name: f.Name(), Offset: offset, Err: err})
	return err
}

func (f *callbackFile) Close() error {
	var err error
	if f.fs.CloseFunc != nil {
		err = f.fs.CloseFunc(f.File)
	} else {
		err = f.File.Close()
	}
	f.fs.Calls = append(f.fs.Calls, Call{Op: "close", Name: f.Name(), Err: err})
	return err
}
