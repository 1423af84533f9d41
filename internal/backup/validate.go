package backup

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/aionbd/aionbd-state/internal/logging"
	"github.com/aionbd/aionbd-state/pkg/fileutil"
)

// Verify validates archivePath in a private extraction directory without
// touching any live state, and returns its manifest.
func (m *Manager) Verify(archivePath string) (*Manifest, error) {
	if err := requireArchive(archivePath); err != nil {
		return nil, err
	}

	root, err := os.MkdirTemp(m.tempDir, "aionbd_verify_stage_")
	if err != nil {
		return nil, ioFailure(err, "creating extraction directory")
	}
	defer os.RemoveAll(root)

	return m.extractAndValidate(archivePath, root)
}

// requireArchive fails with ErrArchiveNotFound unless archivePath is a regular file.
func requireArchive(archivePath string) error {
	kind, err := fileutil.Probe(archivePath)
	if err != nil {
		return ioFailure(err, "probing archive")
	}
	if kind != fileutil.File {
		return errors.Wrapf(ErrArchiveNotFound, "path=%s", archivePath)
	}
	return nil
}

// extractAndValidate unpacks archivePath into root and checks it against its
// manifest. Every member path is checked before anything is written, so an
// unsafe archive leaves root empty.
func (m *Manager) extractAndValidate(archivePath, root string) (*Manifest, error) {
	members, err := scanArchive(archivePath, root)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("archive scanned", "archive", archivePath, "members", members)

	if err := extractArchive(archivePath, root); err != nil {
		return nil, err
	}

	manifest, err := loadManifest(root)
	if err != nil {
		return nil, err
	}

	if err := verifyEntries(root, manifest); err != nil {
		return nil, err
	}

	for _, e := range manifest.Entries {
		m.logger.Log(context.Background(), logging.LevelTrace, "entry verified",
			"path", e.Path, "size_bytes", e.SizeBytes, "sha256", e.SHA256)
	}
	m.logger.Debug("archive verified", "archive", archivePath, "entries", len(manifest.Entries))
	return manifest, nil
}

// verifyEntries re-hashes every manifest entry under root and reports every
// disagreement at once, including extracted files the manifest does not list.
func verifyEntries(root string, manifest *Manifest) error {
	var mismatches []Mismatch
	listed := make(map[string]bool, len(manifest.Entries))

	for _, e := range manifest.Entries {
		listed[e.Path] = true
		p := filepath.Join(root, filepath.FromSlash(e.Path))

		// Only permission errors are I/O failures here. Any other lookup
		// error, such as an entry nested under a file member, is missing.
		info, err := os.Lstat(p)
		if err != nil || !info.Mode().IsRegular() {
			if err != nil && errors.Is(err, fs.ErrPermission) {
				return ioFailure(err, "stat "+e.Path)
			}
			mismatches = append(mismatches, Mismatch{Path: e.Path, Kind: MismatchMissing})
			continue
		}

		if info.Size() != e.SizeBytes {
			mismatches = append(mismatches, Mismatch{
				Path:     e.Path,
				Kind:     MismatchSize,
				Expected: itoa64(e.SizeBytes),
				Actual:   itoa64(info.Size()),
			})
			continue
		}

		digest, err := HashFile(p)
		if err != nil {
			return err
		}
		if digest != e.SHA256 {
			mismatches = append(mismatches, Mismatch{
				Path:     e.Path,
				Kind:     MismatchDigest,
				Expected: e.SHA256,
				Actual:   digest,
			})
		}
	}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel != ManifestMember && !listed[rel] {
			mismatches = append(mismatches, Mismatch{Path: rel, Kind: MismatchUnlisted})
		}
		return nil
	})
	if err != nil {
		return ioFailure(err, "walking extraction directory")
	}

	if len(mismatches) > 0 {
		return &MismatchError{Mismatches: mismatches}
	}
	return nil
}
