package fileutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// CopyFile copies the regular file src to dst, creating or truncating dst
// and applying the permission bits of src. It returns the number of bytes copied.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat source file")
	}
	if !info.Mode().IsRegular() {
		return 0, errors.Newf("source %s is not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, errors.Wrap(err, "creating destination file")
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, errors.Wrap(err, "copying file")
	}

	if err := out.Close(); err != nil {
		return n, errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, errors.Wrap(err, "setting permissions")
	}

	return n, nil
}

// CopyDir recursively copies the directory tree at src into dst, which must
// not exist yet. Symlinks are followed; entries that resolve to neither a
// regular file nor a directory are skipped and returned in skipped.
func CopyDir(src, dst string) (skipped []string, err error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil, errors.Wrap(err, "stat source directory")
	}
	if !srcInfo.IsDir() {
		return nil, errors.Newf("source %s is not a directory", src)
	}

	if err := os.Mkdir(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return nil, errors.Wrap(err, "creating destination directory")
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %s", src)
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		info, err := os.Stat(from)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				skipped = append(skipped, from)
				continue
			}
			return skipped, errors.Wrapf(err, "stat %s", from)
		}

		switch {
		case info.IsDir():
			sub, err := CopyDir(from, to)
			skipped = append(skipped, sub...)
			if err != nil {
				return skipped, err
			}
		case info.Mode().IsRegular():
			if _, err := CopyFile(from, to); err != nil {
				return skipped, errors.Wrapf(err, "copying %s", from)
			}
		default:
			skipped = append(skipped, from)
		}
	}

	return skipped, nil
}
