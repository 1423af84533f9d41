package backup

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/aionbd/aionbd-state/pkg/fileutil"
)

// PlanItem pairs an extracted archive member with its live destination.
type PlanItem struct {
	Source string
	Target string
	Kind   fileutil.Kind
}

// Restore validates archivePath and installs its snapshot, WAL and
// incrementals onto targets. The incrementals directory is derived from
// targets.SnapshotPath, never taken from the manifest.
//
// If any planned target already exists and force is false, a
// *TargetsExistError listing all of them is returned and nothing is touched.
// With force, files are replaced by copy-to-temp then rename, and directories
// by staging a full copy beside the target before swapping it in, so no
// target is ever left partially written.
func (m *Manager) Restore(archivePath string, targets ArtifactSet, force bool) (*RestoreResult, error) {
	if targets.SnapshotPath == "" || targets.WALPath == "" {
		return nil, errors.Wrap(ErrInvalidArtifactPath, "snapshot and WAL paths are required")
	}
	targets.IncrementalPath = IncrementalDir(targets.SnapshotPath)

	if err := requireArchive(archivePath); err != nil {
		return nil, err
	}

	root, err := os.MkdirTemp(m.tempDir, "aionbd_restore_stage_")
	if err != nil {
		return nil, ioFailure(err, "creating extraction directory")
	}
	defer os.RemoveAll(root)

	manifest, err := m.extractAndValidate(archivePath, root)
	if err != nil {
		return nil, err
	}

	plan, err := buildPlan(root, targets)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return nil, ErrNothingToRestore
	}

	conflicts := make(map[string]fileutil.Kind)
	var conflictPaths []string
	for _, item := range plan {
		kind, err := fileutil.Probe(item.Target)
		if err != nil {
			return nil, ioFailure(err, "probing restore target")
		}
		if kind.Exists() {
			conflicts[item.Target] = kind
			conflictPaths = append(conflictPaths, item.Target)
		}
	}
	if len(conflictPaths) > 0 && !force {
		return nil, &TargetsExistError{Paths: conflictPaths}
	}

	result := &RestoreResult{
		Archive:  archivePath,
		Targets:  targets,
		Replaced: conflictPaths,
		Force:    force,
		Manifest: manifest,
	}

	for _, item := range plan {
		existing := conflicts[item.Target]
		if err := install(item, existing); err != nil {
			return nil, ioFailure(err, "restoring "+item.Target)
		}
		m.logger.Info("restored", "target", item.Target, "kind", item.Kind, "replaced", existing.Exists())
		result.Restored = append(result.Restored, item.Target)
	}

	return result, nil
}

// buildPlan pairs the restorable members present under root with targets,
// in snapshot, WAL, incrementals order.
func buildPlan(root string, targets ArtifactSet) ([]PlanItem, error) {
	candidates := []PlanItem{
		{Source: filepath.Join(root, SnapshotMember), Target: targets.SnapshotPath, Kind: fileutil.File},
		{Source: filepath.Join(root, WALMember), Target: targets.WALPath, Kind: fileutil.File},
		{Source: filepath.Join(root, IncrementalsMember), Target: targets.IncrementalPath, Kind: fileutil.Directory},
	}

	var plan []PlanItem
	for _, c := range candidates {
		kind, err := fileutil.Probe(c.Source)
		if err != nil {
			return nil, ioFailure(err, "probing extracted member")
		}
		switch {
		case !kind.Exists():
			continue
		case kind != c.Kind:
			return nil, invalidArchive(errors.Newf("member %s is a %s, expected a %s",
				filepath.Base(c.Source), kind, c.Kind))
		}
		plan = append(plan, c)
	}
	return plan, nil
}

// install places one plan item at its target. existing is what currently
// occupies the target.
func install(item PlanItem, existing fileutil.Kind) error {
	parent := filepath.Dir(item.Target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}

	if item.Kind == fileutil.File {
		// rename(2) replaces a file atomically but cannot replace a directory.
		if existing == fileutil.Directory {
			if err := os.RemoveAll(item.Target); err != nil {
				return errors.Wrap(err, "removing existing target")
			}
		}
		return fileutil.AtomicCopyFile(item.Source, item.Target)
	}

	stageParent, err := os.MkdirTemp(parent, "."+filepath.Base(item.Target)+".restore-")
	if err != nil {
		return errors.Wrap(err, "creating staging directory")
	}
	defer os.RemoveAll(stageParent)

	staged := filepath.Join(stageParent, filepath.Base(item.Target))
	if _, err := fileutil.CopyDir(item.Source, staged); err != nil {
		return errors.Wrap(err, "staging directory")
	}

	if existing.Exists() {
		if err := os.RemoveAll(item.Target); err != nil {
			return errors.Wrap(err, "removing existing target")
		}
	}

	return errors.Wrap(os.Rename(staged, item.Target), "renaming staged directory")
}

func itoa64(n int64) string {
	return strconv.FormatInt(n, 10)
}
