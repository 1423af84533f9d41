package backup

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/aionbd/aionbd-state/pkg/fileutil"
)

var sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// BuildManifest walks root in lexical order and records the size and digest
// of every regular file under it. Directories and non-regular files are
// skipped. source records where the backup was taken from.
func BuildManifest(root string, source ArtifactSet, createdAt time.Time) (*Manifest, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
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

		digest, err := HashFile(p)
		if err != nil {
			return errors.Wrapf(err, "hashing %s", rel)
		}

		entries = append(entries, Entry{
			Path:      filepath.ToSlash(rel),
			SizeBytes: info.Size(),
			SHA256:    digest,
		})
		return nil
	})
	if err != nil {
		return nil, ioFailure(err, "building manifest")
	}

	return &Manifest{
		FormatVersion: FormatVersion,
		CreatedAt:     createdAt.UTC(),
		Source: Source{
			SnapshotPath:    source.SnapshotPath,
			WALPath:         source.WALPath,
			IncrementalPath: source.IncrementalPath,
		},
		Entries: entries,
	}, nil
}

// writeManifest stores m as manifest.json in root.
func writeManifest(root string, m *Manifest) error {
	if err := fileutil.AtomicWriteJSON(filepath.Join(root, ManifestMember), m); err != nil {
		return ioFailure(err, "writing manifest")
	}
	return nil
}

// loadManifest reads and strictly parses root/manifest.json.
func loadManifest(root string) (*Manifest, error) {
	p := filepath.Join(root, ManifestMember)

	kind, err := fileutil.Probe(p)
	if err != nil {
		return nil, ioFailure(err, "probing manifest")
	}
	if kind != fileutil.File {
		return nil, invalidArchive(ErrMissingManifest)
	}

	data, err := fileutil.ReadFileWithLimit(p, maxManifestSize)
	if err != nil {
		if errors.Is(err, fileutil.ErrFileTooLarge) {
			return nil, invalidArchive(errors.Wrap(ErrInvalidManifest, err.Error()))
		}
		return nil, ioFailure(err, "reading manifest")
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, invalidArchive(err)
	}
	return m, nil
}

// ParseManifest decodes manifest.json with explicit presence and type checks
// for every field. Nothing is coerced: a wrong JSON type, an unknown key, a
// non-integer number or a malformed entry fails the parse.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(ErrInvalidManifest, "decoding JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrInvalidManifest, "trailing data after manifest object")
	}

	top, ok := doc.(map[string]any)
	if !ok {
		return nil, errors.Wrap(ErrInvalidManifest, "manifest must be an object")
	}

	// The version decides how the rest is read, so it is checked first.
	rawVersion, ok := top["format_version"]
	if !ok {
		return nil, errors.Wrap(ErrInvalidManifest, "format_version is required")
	}
	version, ok := asInt(rawVersion)
	if !ok || version != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedFormatVersion, "format_version=%v expected=%d", rawVersion, FormatVersion)
	}

	if err := onlyKeys(top, "manifest", "format_version", "created_at_utc", "source", "entries"); err != nil {
		return nil, err
	}

	createdRaw, err := stringField(top, "created_at_utc", "manifest")
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidManifest, "created_at_utc %q is not an RFC 3339 timestamp", createdRaw)
	}

	source, err := parseSource(top)
	if err != nil {
		return nil, err
	}

	entries, err := parseEntries(top)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		FormatVersion: int(version),
		CreatedAt:     createdAt.UTC(),
		Source:        source,
		Entries:       entries,
	}, nil
}

func parseSource(top map[string]any) (Source, error) {
	raw, ok := top["source"]
	if !ok {
		return Source{}, errors.Wrap(ErrInvalidManifest, "source is required")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Source{}, errors.Wrap(ErrInvalidManifest, "source must be an object")
	}
	if err := onlyKeys(obj, "source", "snapshot_path", "wal_path", "incremental_path"); err != nil {
		return Source{}, err
	}

	var src Source
	var err error
	if src.SnapshotPath, err = stringField(obj, "snapshot_path", "source"); err != nil {
		return Source{}, err
	}
	if src.WALPath, err = stringField(obj, "wal_path", "source"); err != nil {
		return Source{}, err
	}
	if src.IncrementalPath, err = stringField(obj, "incremental_path", "source"); err != nil {
		return Source{}, err
	}
	return src, nil
}

func parseEntries(top map[string]any) ([]Entry, error) {
	raw, ok := top["entries"]
	if !ok {
		return nil, errors.Wrap(ErrInvalidManifest, "entries is required")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Wrap(ErrInvalidManifest, "manifest entries must be a list")
	}
	if len(list) == 0 {
		return nil, errors.Wrap(ErrInvalidManifest, "manifest entries must not be empty")
	}

	entries := make([]Entry, 0, len(list))
	seen := make(map[string]bool, len(list))

	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidManifest, "entries[%d] must be an object", i)
		}
		where := "entries[" + strconv.Itoa(i) + "]"
		if err := onlyKeys(obj, where, "path", "size_bytes", "sha256"); err != nil {
			return nil, err
		}

		p, err := stringField(obj, "path", where)
		if err != nil {
			return nil, err
		}
		if err := checkEntryPath(p); err != nil {
			return nil, errors.Wrapf(err, "%s", where)
		}
		if seen[p] {
			return nil, errors.Wrapf(ErrInvalidManifest, "duplicate entry path %q", p)
		}
		seen[p] = true

		rawSize, ok := obj["size_bytes"]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidManifest, "%s.size_bytes is required", where)
		}
		size, ok := asInt(rawSize)
		if !ok || size < 0 {
			return nil, errors.Wrapf(ErrInvalidManifest, "%s.size_bytes must be a non-negative integer", where)
		}

		digest, err := stringField(obj, "sha256", where)
		if err != nil {
			return nil, err
		}
		if !sha256Pattern.MatchString(digest) {
			return nil, errors.Wrapf(ErrInvalidManifest, "%s.sha256 must be 64 lowercase hex characters", where)
		}

		entries = append(entries, Entry{Path: p, SizeBytes: size, SHA256: digest})
	}

	return entries, nil
}

// checkEntryPath accepts only clean, relative, forward-slash paths that stay
// inside the archive root and do not name the manifest itself.
func checkEntryPath(p string) error {
	switch {
	case p == "":
		return errors.Wrap(ErrInvalidManifest, "path must not be empty")
	case path.IsAbs(p) || filepath.IsAbs(p):
		return errors.Wrapf(ErrInvalidManifest, "path %q must be relative", p)
	case path.Clean(p) != p:
		return errors.Wrapf(ErrInvalidManifest, "path %q is not clean", p)
	case p == ".." || strings.HasPrefix(p, "../"):
		return errors.Wrapf(ErrInvalidManifest, "path %q escapes the archive root", p)
	case p == ManifestMember:
		return errors.Wrapf(ErrInvalidManifest, "path %q names the manifest", p)
	}
	return nil
}

func stringField(obj map[string]any, key, where string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", errors.Wrapf(ErrInvalidManifest, "%s.%s is required", where, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidManifest, "%s.%s must be a string", where, key)
	}
	return s, nil
}

// asInt accepts only JSON numbers written as integers.
func asInt(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

func onlyKeys(obj map[string]any, where string, allowed ...string) error {
	var unknown []string
	for k := range obj {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.Wrapf(ErrInvalidManifest, "%s has unknown fields %v", where, unknown)
	}
	return nil
}
