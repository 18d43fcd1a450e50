package vfs

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// TargetArgs are parsed from the query arguments of a target URL.
type TargetArgs struct {
	// Sync flushes written files to stable storage before they're closed.
	Sync bool `schema:"sync"`
	// Mkdir creates the target directory if it doesn't exist.
	Mkdir bool `schema:"mkdir"`
}

// Target is a resolved benchmark target.
type Target struct {
	URL  *url.URL
	Args TargetArgs
	// Root is the OS directory which roots the target, or empty for
	// targets having no OS presence.
	Root string
	// Fs is the afero.Fs of the target. Paths are relative to Root.
	Fs afero.Fs
}

// FS returns the target's FS.
func (t *Target) FS() FS { return New(t.Fs, Options{Sync: t.Args.Sync}) }

func (t *Target) String() string { return t.URL.String() }

// OpenTarget resolves |target| into a Target. It may be a bare directory
// path, or a URL of the forms:
//
//	file:///path/to/dir?mkdir=true&sync=true
//	mem://
func OpenTarget(target string) (*Target, error) {
	if !strings.Contains(target, "://") {
		var abs, err = filepath.Abs(target)
		if err != nil {
			return nil, err
		}
		target = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}

	var ep, err = url.Parse(target)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing target %q", target)
	}
	var t = &Target{URL: ep}

	if err = parseTargetArgs(ep, &t.Args); err != nil {
		return nil, err
	}

	switch ep.Scheme {
	case "file":
		if ep.Host != "" {
			return nil, fmt.Errorf("file target %q must not have a host (use file:///abs/path)", target)
		}
		t.Root = filepath.FromSlash(ep.Path)

		if t.Args.Mkdir {
			if err = os.MkdirAll(t.Root, 0755); err != nil {
				return nil, errors.WithMessage(err, "creating target directory")
			}
		}
		if info, err := os.Stat(t.Root); err != nil {
			return nil, errors.WithMessage(err, "target directory")
		} else if !info.IsDir() {
			return nil, fmt.Errorf("target %q is not a directory", t.Root)
		}
		t.Fs = afero.NewBasePathFs(afero.NewOsFs(), t.Root)

	case "mem":
		t.Fs = afero.NewMemMapFs()

	default:
		return nil, fmt.Errorf("unsupported target scheme %q", ep.Scheme)
	}
	return t, nil
}

func parseTargetArgs(ep *url.URL, args *TargetArgs) error {
	var decoder = schema.NewDecoder()
	decoder.IgnoreUnknownKeys(false)

	if q, err := url.ParseQuery(ep.RawQuery); err != nil {
		return err
	} else if err = decoder.Decode(args, q); err != nil {
		return fmt.Errorf("parsing target URL arguments: %s", err)
	}
	return nil
}
