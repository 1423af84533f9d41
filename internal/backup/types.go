package backup

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// FormatVersion is the only manifest format this package reads or writes.
const FormatVersion = 1

// Archive member names. These are part of the archive contract.
const (
	SnapshotMember     = "snapshot.json"
	WALMember          = "wal.jsonl"
	IncrementalsMember = "incrementals"
	ManifestMember     = "manifest.json"
)

// Default configuration values.
const (
	// DefaultRetentionCount is the default number of archives kept by Prune.
	DefaultRetentionCount = 5

	// maxManifestSize bounds how much of manifest.json is read into memory.
	maxManifestSize = 16 << 20
)

// Sentinel errors for backup and restore operations.
var (
	// ErrInvalidArtifactPath indicates a live artifact path exists with the
	// wrong type (a directory where a file is expected, or vice versa).
	ErrInvalidArtifactPath = errors.New("invalid artifact path")

	// ErrNoPersistenceData indicates none of the snapshot, WAL or
	// incrementals directory exist, so there is nothing to back up.
	ErrNoPersistenceData = errors.New("no persistence files found")

	// ErrNothingToRestore indicates a validated archive carries none of the
	// restorable members.
	ErrNothingToRestore = errors.New("restore payload is empty")

	// ErrArchiveNotFound indicates the input archive is missing or not a file.
	ErrArchiveNotFound = errors.New("backup archive not found")

	// ErrInvalidArchive is the common parent of every archive validation failure.
	ErrInvalidArchive = errors.New("invalid backup archive")

	// ErrUnsafeArchiveEntry indicates a member would be written outside the
	// extraction root, or is a link or special file.
	ErrUnsafeArchiveEntry = errors.New("archive contains unsafe entry")

	// ErrMissingManifest indicates the archive has no manifest.json.
	ErrMissingManifest = errors.New("backup archive is missing manifest.json")

	// ErrInvalidManifest indicates manifest.json does not match the schema.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrUnsupportedFormatVersion indicates a manifest format_version other
	// than FormatVersion.
	ErrUnsupportedFormatVersion = errors.New("unsupported backup format_version")

	// ErrManifestEntryMismatch indicates extracted content disagrees with the
	// manifest. The concrete error is a *MismatchError.
	ErrManifestEntryMismatch = errors.New("manifest entry mismatch")

	// ErrTargetsExist indicates restore targets already exist and force was
	// not requested. The concrete error is a *TargetsExistError.
	ErrTargetsExist = errors.New("restore target exists")

	// ErrIO marks filesystem and stream failures.
	ErrIO = errors.New("i/o failure")

	// ErrNoBackupsFound indicates the backup directory holds no archives.
	ErrNoBackupsFound = errors.New("no backups found")
)

// ioFailure wraps err with msg and marks it as ErrIO, keeping the cause.
func ioFailure(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrIO)
}

// invalidArchive wraps a validation failure so it matches both its own
// sentinel and ErrInvalidArchive.
func invalidArchive(err error) error {
	return errors.Mark(err, ErrInvalidArchive)
}

// MismatchKind names how an archived file disagrees with its manifest entry.
type MismatchKind string

const (
	MismatchMissing  MismatchKind = "missing"
	MismatchSize     MismatchKind = "size"
	MismatchDigest   MismatchKind = "sha256"
	MismatchUnlisted MismatchKind = "unlisted"
)

// Mismatch describes one disagreement between the manifest and the archive.
type Mismatch struct {
	Path     string
	Kind     MismatchKind
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	switch m.Kind {
	case MismatchMissing:
		return "archive entry is missing: " + m.Path
	case MismatchUnlisted:
		return "archive entry is not in manifest: " + m.Path
	default:
		return fmt.Sprintf("%s mismatch for %s: actual=%s expected=%s", m.Kind, m.Path, m.Actual, m.Expected)
	}
}

// MismatchError lists every mismatch found while verifying an archive.
type MismatchError struct {
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return strings.Join(parts, "; ")
}

// Is reports ErrManifestEntryMismatch and ErrInvalidArchive.
func (e *MismatchError) Is(target error) bool {
	return target == ErrManifestEntryMismatch || target == ErrInvalidArchive
}

// TargetsExistError lists every restore target that already exists.
type TargetsExistError struct {
	Paths []string
}

func (e *TargetsExistError) Error() string {
	return "restore target exists: " + strings.Join(e.Paths, ",")
}

// Is reports ErrTargetsExist.
func (e *TargetsExistError) Is(target error) bool {
	return target == ErrTargetsExist
}

// Manifest is the inventory stored as manifest.json in every archive.
type Manifest struct {
	// FormatVersion must equal FormatVersion exactly.
	FormatVersion int `json:"format_version" yaml:"format_version" toml:"format_version"`

	// CreatedAt is when the backup was taken, in UTC.
	CreatedAt time.Time `json:"created_at_utc" yaml:"created_at_utc" toml:"created_at_utc"`

	// Source records the live paths the backup was taken from. It is
	// informational; restore targets come from the caller.
	Source Source `json:"source" yaml:"source" toml:"source"`

	// Entries lists every archived file, sorted by path.
	Entries []Entry `json:"entries" yaml:"entries" toml:"entries"`
}

// Source is the set of live paths recorded in a manifest.
type Source struct {
	SnapshotPath    string `json:"snapshot_path" yaml:"snapshot_path" toml:"snapshot_path"`
	WALPath         string `json:"wal_path" yaml:"wal_path" toml:"wal_path"`
	IncrementalPath string `json:"incremental_path" yaml:"incremental_path" toml:"incremental_path"`
}

// Entry is one archived file.
type Entry struct {
	// Path is relative to the archive root and always uses forward slashes.
	Path string `json:"path" yaml:"path" toml:"path"`

	// SizeBytes is the file size.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes" toml:"size_bytes"`

	// SHA256 is the lowercase hex SHA-256 digest of the content.
	SHA256 string `json:"sha256" yaml:"sha256" toml:"sha256"`
}

// BackupResult summarizes a completed backup.
type BackupResult struct {
	Output             string
	Entries            int
	SnapshotPresent    bool
	WALPresent         bool
	IncrementalPresent bool
	Manifest           *Manifest
}

// RestoreResult summarizes a completed restore.
type RestoreResult struct {
	Archive  string
	Targets  ArtifactSet
	Restored []string
	Replaced []string
	Force    bool
	Manifest *Manifest
}
