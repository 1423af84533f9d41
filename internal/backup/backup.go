package backup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/aionbd/aionbd-state/internal/logging"
	"github.com/aionbd/aionbd-state/pkg/fileutil"
)

// Manager creates, verifies, restores and prunes persistence backups.
// It holds only configuration; every operation is independent.
type Manager struct {
	rootDir        string
	retentionCount int
	tempDir        string
	logger         *slog.Logger
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the directory scanned by List and Prune.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of archives Prune keeps by default.
// Negative values are ignored.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.retentionCount = n
		}
	}
}

// WithTempDir sets where staging and extraction directories are created.
// The default is os.TempDir.
func WithTempDir(dir string) Option {
	return func(m *Manager) {
		m.tempDir = dir
	}
}

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source used for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        "backups",
		retentionCount: DefaultRetentionCount,
		logger:         logging.NewDiscard(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BackupDir returns the directory used by List and Prune.
func (m *Manager) BackupDir() string {
	return m.rootDir
}

// Backup copies the snapshot, WAL and incrementals directory of artifacts
// into a private staging directory, records a manifest of every staged file,
// and writes the whole tree as a gzip-compressed tar to output.
//
// Missing artifacts are skipped, but at least one must exist or
// ErrNoPersistenceData is returned and no archive is written. An empty output
// places the archive in the backup directory under DefaultArchiveName. The
// archive is written to a temp file next to output and renamed into place,
// replacing any existing file.
func (m *Manager) Backup(artifacts ArtifactSet, output string) (*BackupResult, error) {
	createdAt := m.now()
	if output == "" {
		output = DefaultArchivePath(m.rootDir, createdAt)
	}
	if artifacts.SnapshotPath == "" || artifacts.WALPath == "" {
		return nil, errors.Wrap(ErrInvalidArtifactPath, "snapshot and WAL paths are required")
	}
	artifacts.IncrementalPath = IncrementalDir(artifacts.SnapshotPath)

	snapshotKind, err := expectKind(artifacts.SnapshotPath, fileutil.File, "snapshot")
	if err != nil {
		return nil, err
	}
	walKind, err := expectKind(artifacts.WALPath, fileutil.File, "wal")
	if err != nil {
		return nil, err
	}
	incrementalKind, err := expectKind(artifacts.IncrementalPath, fileutil.Directory, "incremental")
	if err != nil {
		return nil, err
	}

	if !snapshotKind.Exists() && !walKind.Exists() && !incrementalKind.Exists() {
		return nil, errors.Wrapf(ErrNoPersistenceData, "snapshot=%s wal=%s incremental=%s",
			artifacts.SnapshotPath, artifacts.WALPath, artifacts.IncrementalPath)
	}

	staging, err := os.MkdirTemp(m.tempDir, "aionbd_backup_stage_")
	if err != nil {
		return nil, ioFailure(err, "creating staging directory")
	}
	defer os.RemoveAll(staging)

	if snapshotKind.Exists() {
		if err := m.stageFile(artifacts.SnapshotPath, filepath.Join(staging, SnapshotMember)); err != nil {
			return nil, err
		}
	}
	if walKind.Exists() {
		if err := m.stageFile(artifacts.WALPath, filepath.Join(staging, WALMember)); err != nil {
			return nil, err
		}
	}
	if incrementalKind.Exists() {
		skipped, err := fileutil.CopyDir(artifacts.IncrementalPath, filepath.Join(staging, IncrementalsMember))
		for _, p := range skipped {
			m.logger.Warn("skipping non-regular file in incrementals", "path", p)
		}
		if err != nil {
			return nil, ioFailure(err, "staging incrementals")
		}
		m.logger.Debug("staged artifact", "kind", "incremental", "path", artifacts.IncrementalPath)
	}

	manifest, err := BuildManifest(staging, artifacts, createdAt)
	if err != nil {
		return nil, err
	}
	// An archive with no entries would fail its own validation.
	if len(manifest.Entries) == 0 {
		return nil, errors.Wrapf(ErrNoPersistenceData, "no files under snapshot=%s wal=%s incremental=%s",
			artifacts.SnapshotPath, artifacts.WALPath, artifacts.IncrementalPath)
	}
	if err := writeManifest(staging, manifest); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, ioFailure(err, "creating output directory")
	}
	err = fileutil.AtomicWriteStream(output, fileutil.DefaultFilePerm, func(w io.Writer) error {
		return writeArchive(staging, w)
	})
	if err != nil {
		return nil, ioFailure(err, "writing archive")
	}

	m.logger.Info("backup created", "output", output, "entries", len(manifest.Entries))

	return &BackupResult{
		Output:             output,
		Entries:            len(manifest.Entries),
		SnapshotPresent:    snapshotKind.Exists(),
		WALPresent:         walKind.Exists(),
		IncrementalPresent: incrementalKind.Exists(),
		Manifest:           manifest,
	}, nil
}

// stageFile copies one live artifact file whole into the staging tree.
func (m *Manager) stageFile(src, dst string) error {
	n, err := fileutil.CopyFile(src, dst)
	if err != nil {
		return ioFailure(err, "staging "+src)
	}
	m.logger.Debug("staged artifact", "path", src, "bytes", n)
	return nil
}

// expectKind probes path and fails with ErrInvalidArtifactPath when
// something other than want (or nothing) is there.
func expectKind(path string, want fileutil.Kind, label string) (fileutil.Kind, error) {
	kind, err := fileutil.Probe(path)
	if err != nil {
		return kind, ioFailure(err, "probing "+label+" path")
	}
	if kind.Exists() && kind != want {
		return kind, errors.Wrapf(ErrInvalidArtifactPath, "%s path %s is a %s, expected a %s", label, path, kind, want)
	}
	return kind, nil
}
