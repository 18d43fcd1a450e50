package manifest

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.gazette.dev/fsbench/vfs"
)

// Stats of a manifest-driven phase.
type Stats struct {
	// Records processed by the phase.
	Records int
	// Failures tolerated by the phase (deletes only).
	Failures int
}

// Create a zero-length file for each record of the manifest at |createPath|.
// A failure to create or close a file is fatal.
func Create(fs vfs.FS, createPath string) (stats Stats, err error) {
	var r *Reader
	if r, err = Open(fs, createPath); err != nil {
		return stats, err
	}
	defer r.Close()

	for {
		var name, ok, err = r.Next()
		if err != nil || !ok {
			return stats, err
		}

		var f vfs.File
		if f, err = fs.Open(name, vfs.Write|vfs.CreateTruncate); err != nil {
			return stats, vfs.NewOpError("create", name, vfs.ErrOpen, err)
		}
		if err = f.Close(); err != nil {
			log.WithFields(log.Fields{"name": name, "err": err}).Debug("close failed")
			return stats, vfs.NewOpError("close", name, vfs.ErrShortIO, err)
		}
		stats.Records++
	}
}

// Rename each file named by a record of the manifest at |createPath| to the
// positionally paired record of the manifest at |renamePath|. The phase ends
// without error when either manifest is exhausted. A failed rename is fatal.
func Rename(fs vfs.FS, createPath, renamePath string) (stats Stats, err error) {
	var from, to *Reader

	if from, err = Open(fs, createPath); err != nil {
		return stats, err
	}
	defer from.Close()

	if to, err = Open(fs, renamePath); err != nil {
		return stats, err
	}
	defer to.Close()

	for {
		var oldname, newname string
		var ok bool

		if oldname, ok, err = from.Next(); err != nil || !ok {
			return stats, err
		} else if newname, ok, err = to.Next(); err != nil || !ok {
			return stats, err
		}

		if err = fs.Rename(oldname, newname); err != nil {
			return stats, vfs.NewOpError("rename", oldname, vfs.ErrRename,
				fmt.Errorf("to %q: %w", newname, err))
		}
		stats.Records++
	}
}

// Delete each file named by a record of the manifest at |renamePath|.
// Unless |strict|, failed deletes are logged and counted but don't end the
// phase, which succeeds. If |strict|, the first failed delete is fatal.
func Delete(fs vfs.FS, renamePath string, strict bool) (stats Stats, err error) {
	var r *Reader
	if r, err = Open(fs, renamePath); err != nil {
		return stats, err
	}
	defer r.Close()

	for {
		var name, ok, err = r.Next()
		if err != nil || !ok {
			return stats, err
		}
		stats.Records++

		if err = fs.Remove(name); err == nil {
			continue
		} else if strict {
			return stats, vfs.NewOpError("delete", name, vfs.ErrDelete, err)
		}
		stats.Failures++

		log.WithFields(log.Fields{
			"name": name,
			"err":  err,
		}).Warn("unable to delete file (continuing)")
	}
}
