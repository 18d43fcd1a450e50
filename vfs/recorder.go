package vfs

import (
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/fsbench/metrics"
)

// RecordedFS wraps an FS, recording each operation and its outcome into
// the collectors of package metrics.
type RecordedFS struct {
	FS
}

func (r RecordedFS) Open(name string, mode Mode) (File, error) {
	var started = time.Now()
	var file, err = r.FS.Open(name, mode)
	record("open", started, err)

	if err != nil {
		log.WithFields(log.Fields{"name": name, "mode": mode, "err": err}).Trace("open failed")
		return nil, err
	}
	return &recordedFile{File: file}, nil
}

func (r RecordedFS) Rename(oldname, newname string) error {
	var started = time.Now()
	var err = r.FS.Rename(oldname, newname)
	record("rename", started, err)
	return err
}

func (r RecordedFS) Remove(name string) error {
	var started = time.Now()
	var err = r.FS.Remove(name)
	record("remove", started, err)
	return err
}

// recordedFile wraps a File, recording its operations.
type recordedFile struct {
	File
}

func (r *recordedFile) Read(p []byte) (n int, err error) {
	var started = time.Now()
	n, err = r.File.Read(p)

	// A read at EOF is the expected end of a sequential scan.
	if errors.Is(err, io.EOF) {
		record("read", started, nil)
	} else {
		record("read", started, err)
	}
	metrics.FsBytesTotal.WithLabelValues("read").Add(float64(n))
	return
}

func (r *recordedFile) Write(p []byte) (n int, err error) {
	var started = time.Now()
	n, err = r.File.Write(p)
	if err == nil && n != len(p) {
		record("write", started, ShortIO("write", r.Name(), n, len(p), nil))
	} else {
		record("write", started, err)
	}
	metrics.FsBytesTotal.WithLabelValues("write").Add(float64(n))
	return
}

func (r *recordedFile) Seek(offset int64) error {
	var started = time.Now()
	var err = r.File.Seek(offset)
	record("seek", started, err)
	return err
}

func (r *recordedFile) Close() error {
	var started = time.Now()
	var err = r.File.Close()
	record("close", started, err)
	return err
}

func record(op string, started time.Time, err error) {
	var status = metrics.Ok
	if err != nil {
		status = metrics.Fail
	}
	metrics.FsOpsTotal.WithLabelValues(op, status).Inc()
	metrics.FsOpDurationSeconds.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
