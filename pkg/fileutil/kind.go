package fileutil

import (
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
)

// Kind classifies what, if anything, exists at a path.
type Kind int

const (
	// Absent means nothing exists at the path.
	Absent Kind = iota
	// File is a regular file.
	File
	// Directory is a directory.
	Directory
	// Other is anything else: a socket, device, fifo or dangling symlink.
	Other
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "other"
	}
}

// Exists reports whether anything at all is present.
func (k Kind) Exists() bool {
	return k != Absent
}

// Probe stats path (following symlinks) and reports its Kind.
// A missing path is Absent with a nil error; only real stat failures
// (permissions, I/O) are returned as errors.
func Probe(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// A dangling symlink still occupies the name.
			if _, lerr := os.Lstat(path); lerr == nil {
				return Other, nil
			}
			return Absent, nil
		}
		return Absent, errors.Wrapf(err, "stat %s", path)
	}
	switch {
	case info.Mode().IsRegular():
		return File, nil
	case info.IsDir():
		return Directory, nil
	default:
		return Other, nil
	}
}
