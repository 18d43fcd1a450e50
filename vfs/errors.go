package vfs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kinds of operation failure. An *OpError matches its Kind under errors.Is.
var (
	ErrOpen    = errors.New("open failed")
	ErrShortIO = errors.New("short i/o")
	ErrSeek    = errors.New("seek failed")
	ErrRename  = errors.New("rename failed")
	ErrDelete  = errors.New("delete failed")
)

// OpError records a failed file operation, the file it applied to, and the
// kind of failure.
type OpError struct {
	Op   string // Operation, eg "open", "write", "rename".
	Path string // File operated upon. For renames, the source.
	Kind error  // One of ErrOpen, ErrShortIO, ErrSeek, ErrRename, ErrDelete.
	Err  error  // Underlying cause. May be nil.
}

// NewOpError returns an *OpError of the given Kind.
func NewOpError(op, path string, kind, err error) *OpError {
	return &OpError{Op: op, Path: path, Kind: kind, Err: err}
}

// ShortIO returns an *OpError of kind ErrShortIO for a transfer of |n| of
// |want| bytes.
func ShortIO(op, path string, n, want int, err error) *OpError {
	if err == nil {
		err = fmt.Errorf("transferred %d of %d bytes", n, want)
	} else {
		err = fmt.Errorf("transferred %d of %d bytes: %w", n, want, err)
	}
	return NewOpError(op, path, ErrShortIO, err)
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %q: %s: %s", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap returns both the Kind and the underlying cause.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
