// Package manifest writes and reads manifest files: fixed-width records of
// generated names, each terminated by CRLF. Manifests drive the bulk create,
// rename and delete phases of a benchmark.
package manifest

import (
	"io"

	"github.com/pkg/errors"
	"go.gazette.dev/fsbench/naming"
	"go.gazette.dev/fsbench/vfs"
)

const (
	// NameSize is the width of a record's name.
	NameSize = naming.NameLen
	// RecordSize is the width of a record: its name and a CRLF terminator.
	RecordSize = NameSize + len(terminator)
)

const terminator = "\r\n"

// Namer generates the name of a manifest record.
type Namer interface {
	Name(suffix byte, index int) string
}

// Write a manifest of |count| records to |path|, naming each with |suffix|
// and its record index. An existing file at |path| is truncated.
func Write(fs vfs.FS, path string, namer Namer, suffix byte, count int) (err error) {
	var f vfs.File
	if f, err = fs.Open(path, vfs.Write|vfs.CreateTruncate); err != nil {
		return vfs.NewOpError("open", path, vfs.ErrOpen, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = vfs.NewOpError("close", path, vfs.ErrShortIO, closeErr)
		}
	}()

	for i := 0; i != count; i++ {
		var name = namer.Name(suffix, i)
		if len(name) != NameSize {
			return errors.Errorf("generated name %q is not %d bytes", name, NameSize)
		}
		if err = writeFull(f, []byte(name)); err != nil {
			return err
		}
		if err = writeFull(f, []byte(terminator)); err != nil {
			return err
		}
	}
	return nil
}

func writeFull(f vfs.File, b []byte) error {
	if n, err := f.Write(b); err != nil || n != len(b) {
		return vfs.ShortIO("write", f.Name(), n, len(b), err)
	}
	return nil
}

// Reader reads the records of a manifest.
type Reader struct {
	f   vfs.File
	rec [RecordSize]byte
	n   int // Records read.
}

// Open the manifest at |path| for reading.
func Open(fs vfs.FS, path string) (*Reader, error) {
	var f, err = fs.Open(path, vfs.Read)
	if err != nil {
		return nil, vfs.NewOpError("open", path, vfs.ErrOpen, err)
	}
	return &Reader{f: f}, nil
}

// Next returns the name of the next record, or false if the manifest is
// exhausted. A trailing partial record also ends the manifest.
func (r *Reader) Next() (string, bool, error) {
	var n, err = io.ReadFull(r.f, r.rec[:])

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return "", false, nil
	} else if err != nil {
		return "", false, vfs.ShortIO("read", r.f.Name(), n, RecordSize, err)
	}
	r.n++
	return string(r.rec[:NameSize]), true, nil
}

// Records returns the number of complete records read thus far.
func (r *Reader) Records() int { return r.n }

// Path of the manifest.
func (r *Reader) Path() string { return r.f.Name() }

// Close the Reader.
func (r *Reader) Close() error { return r.f.Close() }
