package vfs

import (
	"os"
	"strings"
)

// Mode is a set of access and disposition bits with which a file is opened.
type Mode uint8

const (
	// Read opens the file for reading.
	Read Mode = 1 << iota
	// Write opens the file for writing.
	Write
	// CreateNew creates the file, failing if it already exists.
	CreateNew
	// CreateTruncate creates the file, truncating it if it already exists.
	CreateTruncate
	// OpenExisting opens the file only if it already exists. It's the
	// default disposition when neither CreateNew nor CreateTruncate is set.
	OpenExisting

	// ReadWrite opens the file for both reading and writing.
	ReadWrite = Read | Write
)

// Flags maps the Mode onto os.OpenFile flags.
func (m Mode) Flags() int {
	var flags int

	switch {
	case m&ReadWrite == ReadWrite:
		flags = os.O_RDWR
	case m&Write != 0:
		flags = os.O_WRONLY
	default:
		flags = os.O_RDONLY
	}

	switch {
	case m&CreateNew != 0:
		flags |= os.O_CREATE | os.O_EXCL
	case m&CreateTruncate != 0:
		flags |= os.O_CREATE | os.O_TRUNC
	}
	return flags
}

// Writable is true if the Mode permits writes.
func (m Mode) Writable() bool { return m&Write != 0 }

func (m Mode) String() string {
	var parts []string
	for _, b := range []struct {
		bit  Mode
		name string
	}{
		{Read, "read"},
		{Write, "write"},
		{CreateNew, "create-new"},
		{CreateTruncate, "create-truncate"},
		{OpenExisting, "open-existing"},
	} {
		if m&b.bit != 0 {
			parts = append(parts, b.name)
		}
	}
	if len(parts) == 0 {
		return "read"
	}
	return strings.Join(parts, "|")
}
