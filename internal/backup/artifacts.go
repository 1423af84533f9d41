package backup

import (
	"path/filepath"
	"strings"
	"time"
)

// incrementalsExt replaces the snapshot extension to name the incrementals directory.
const incrementalsExt = ".incrementals"

// ArtifactSet is the set of live persistence locations owned by the engine.
type ArtifactSet struct {
	// SnapshotPath is the full snapshot file.
	SnapshotPath string
	// WALPath is the write-ahead log file.
	WALPath string
	// IncrementalPath is the directory of rotated WAL segments. It is always
	// derived from SnapshotPath.
	IncrementalPath string
}

// NewArtifactSet returns the artifact set for the given snapshot and WAL paths.
func NewArtifactSet(snapshotPath, walPath string) ArtifactSet {
	return ArtifactSet{
		SnapshotPath:    snapshotPath,
		WALPath:         walPath,
		IncrementalPath: IncrementalDir(snapshotPath),
	}
}

// IncrementalDir derives the incrementals directory from a snapshot path by
// replacing the file extension with ".incrementals", or appending it when the
// name has none:
//
//	data/aionbd_snapshot.json -> data/aionbd_snapshot.incrementals
//	data/snapshot             -> data/snapshot.incrementals
//	data/.snapshot            -> data/.snapshot.incrementals
func IncrementalDir(snapshotPath string) string {
	dir, base := filepath.Split(snapshotPath)
	ext := filepath.Ext(base)
	if ext == base {
		// ".snapshot" is a hidden name, not an extension.
		ext = ""
	}
	return dir + strings.TrimSuffix(base, ext) + incrementalsExt
}

// archivePrefix and archiveSuffix frame the default archive file name.
const (
	archivePrefix = "aionbd-backup-"
	archiveSuffix = ".tar.gz"
	archiveStamp  = "20060102T150405Z"
)

// DefaultArchiveName returns the archive file name for a backup taken at t.
func DefaultArchiveName(t time.Time) string {
	return archivePrefix + t.UTC().Format(archiveStamp) + archiveSuffix
}

// DefaultArchivePath joins DefaultArchiveName(t) onto dir.
func DefaultArchivePath(dir string, t time.Time) string {
	return filepath.Join(dir, DefaultArchiveName(t))
}

// parseArchiveName extracts the timestamp embedded by DefaultArchiveName.
func parseArchiveName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), archiveSuffix)
	t, err := time.Parse(archiveStamp, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
