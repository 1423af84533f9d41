package backup

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

// writeArchive streams a gzip-compressed tar of every directory and regular
// file under root to w. Member names are relative to root, use forward
// slashes, and are emitted in lexical walk order.
func writeArchive(root string, w io.Writer) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}
		// Owner names are host specific and meaningless on restore.
		hdr.Uname, hdr.Gname = "", ""

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := io.Copy(tw, f)
		if err != nil {
			return err
		}
		if n != hdr.Size {
			return errors.Newf("%s changed size while archiving: %d != %d", rel, n, hdr.Size)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "closing tar stream")
	}
	return errors.Wrap(gz.Close(), "closing gzip stream")
}

// openArchive opens a gzip tar for reading. The returned close function
// releases both the gzip reader and the file.
func openArchive(archivePath string) (*tar.Reader, func(), error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, nil, ioFailure(err, "opening archive")
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, invalidArchive(errors.Wrap(err, "reading gzip header"))
	}
	return tar.NewReader(gz), func() {
		gz.Close()
		f.Close()
	}, nil
}

// scanArchive reads every member header without writing anything and
// rejects the archive if any member is unsafe to extract under root.
func scanArchive(archivePath, root string) (int, error) {
	tr, closeFn, err := openArchive(archivePath)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	members := 0
	for {
		hdr, err := nextHeader(tr)
		if err == io.EOF {
			return members, nil
		}
		if err != nil {
			return members, invalidArchive(errors.Wrap(err, "reading archive"))
		}
		if _, err := memberTarget(root, hdr); err != nil {
			return members, err
		}
		members++
	}
}

// extractArchive writes every member under root. It must only run after
// scanArchive accepted the same archive; each path is still re-checked.
func extractArchive(archivePath, root string) error {
	tr, closeFn, err := openArchive(archivePath)
	if err != nil {
		return err
	}
	defer closeFn()

	for {
		hdr, err := nextHeader(tr)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return invalidArchive(errors.Wrap(err, "reading archive"))
		}

		target, err := memberTarget(root, hdr)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o700); err != nil {
				return extractFailure(err, hdr.Name)
			}
		default:
			if err := extractFile(tr, hdr, target); err != nil {
				return err
			}
		}
	}
}

func extractFile(tr *tar.Reader, hdr *tar.Header, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return extractFailure(err, hdr.Name)
	}

	perm := hdr.FileInfo().Mode().Perm() | 0o600
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return extractFailure(err, hdr.Name)
	}

	if _, err := io.CopyN(out, tr, hdr.Size); err != nil {
		out.Close()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return invalidArchive(errors.Wrapf(err, "member %s is truncated", hdr.Name))
		}
		return invalidArchive(errors.Wrapf(err, "extracting %s", hdr.Name))
	}

	if err := out.Close(); err != nil {
		return ioFailure(err, "closing file")
	}
	return nil
}

// extractFailure classifies a filesystem error hit while writing member name.
// A member whose path collides with an earlier member of another type
// (a file where a directory is needed, or the reverse) makes the archive
// invalid; anything else is an I/O failure.
func extractFailure(err error, name string) error {
	if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EISDIR) || errors.Is(err, fs.ErrExist) {
		return invalidArchive(errors.Wrapf(err, "member %s collides with another member", name))
	}
	return ioFailure(err, "extracting "+name)
}

// nextHeader is tr.Next, except that names the tar package itself flags as
// insecure are passed through so memberTarget reports them uniformly.
func nextHeader(tr *tar.Reader) (*tar.Header, error) {
	hdr, err := tr.Next()
	if hdr != nil && errors.Is(err, tar.ErrInsecurePath) {
		return hdr, nil
	}
	return hdr, err
}

// memberTarget resolves where a member would be written under root.
// It returns "" for members that are skipped (the root itself and PAX global
// headers) and ErrUnsafeArchiveEntry for anything that is not a regular file
// or directory, whose name is blank or padded with whitespace, or whose path
// would leave root.
func memberTarget(root string, hdr *tar.Header) (string, error) {
	switch hdr.Typeflag {
	case tar.TypeReg, tar.TypeDir:
	case tar.TypeXGlobalHeader:
		return "", nil
	default:
		return "", unsafeEntry(hdr.Name, "unsupported member type "+string(hdr.Typeflag))
	}

	name := hdr.Name
	if strings.TrimSpace(name) == "" {
		return "", unsafeEntry(hdr.Name, "empty member name")
	}
	if strings.TrimSpace(name) != name {
		return "", unsafeEntry(hdr.Name, "member name has leading or trailing whitespace")
	}
	if path.IsAbs(name) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", unsafeEntry(hdr.Name, "absolute member path")
	}

	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", unsafeEntry(hdr.Name, "member path escapes the extraction root")
	}

	target := filepath.Join(root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", unsafeEntry(hdr.Name, "member path escapes the extraction root")
	}

	if rel == "." {
		if hdr.Typeflag == tar.TypeDir {
			return "", nil
		}
		return "", unsafeEntry(hdr.Name, "file member resolves to the extraction root")
	}

	return target, nil
}

func unsafeEntry(name, reason string) error {
	return invalidArchive(errors.Wrapf(ErrUnsafeArchiveEntry, "%s: %q", reason, name))
}
