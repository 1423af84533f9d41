package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedArchives(t *testing.T, dir string, stamps ...time.Time) []string {
	t.Helper()
	paths := make([]string, 0, len(stamps))
	for _, ts := range stamps {
		p := DefaultArchivePath(dir, ts)
		writeFile(t, p, "archive")
		paths = append(paths, p)
	}
	return paths
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	paths := seedArchives(t, dir, base, base.Add(2*time.Hour), base.Add(time.Hour))

	// Files that do not follow the naming scheme are ignored.
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "manual.tar.gz"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultArchiveName(base.Add(5*time.Hour))), 0o755))

	m := NewManager(WithBackupDir(dir))
	archives, err := m.List()
	require.NoError(t, err)
	require.Len(t, archives, 3)

	assert.Equal(t, paths[1], archives[0].Path)
	assert.Equal(t, paths[2], archives[1].Path)
	assert.Equal(t, paths[0], archives[2].Path)
	assert.Equal(t, base.Add(2*time.Hour), archives[0].CreatedAt)
	assert.Equal(t, int64(len("archive")), archives[0].SizeBytes)
	assert.Equal(t, filepath.Base(paths[1]), archives[0].Name)
}

func TestList_NoBackups(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		m := NewManager(WithBackupDir(filepath.Join(t.TempDir(), "missing")))
		_, err := m.List()
		assert.True(t, errors.Is(err, ErrNoBackupsFound))
	})

	t.Run("empty directory", func(t *testing.T) {
		m := NewManager(WithBackupDir(t.TempDir()))
		_, err := m.List()
		assert.True(t, errors.Is(err, ErrNoBackupsFound))
	})
}

func TestPrune(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		keep      int
		retention int
		wantLeft  int
	}{
		{"keep two", 2, DefaultRetentionCount, 2},
		{"keep zero", 0, DefaultRetentionCount, 0},
		{"keep more than present", 10, DefaultRetentionCount, 4},
		{"negative uses retention", -1, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			paths := seedArchives(t, dir, base, base.Add(time.Hour), base.Add(2*time.Hour), base.Add(3*time.Hour))

			m := NewManager(WithBackupDir(dir), WithRetentionCount(tt.retention))
			removed, err := m.Prune(tt.keep)
			require.NoError(t, err)
			assert.Len(t, removed, 4-tt.wantLeft)

			// The oldest archives go first.
			for i, p := range paths {
				_, statErr := os.Stat(p)
				if i >= 4-tt.wantLeft {
					assert.NoError(t, statErr, "archive %d should remain", i)
				} else {
					assert.True(t, os.IsNotExist(statErr), "archive %d should be removed", i)
				}
			}
		})
	}
}

func TestPrune_NothingToDo(t *testing.T) {
	m := NewManager(WithBackupDir(filepath.Join(t.TempDir(), "missing")))
	removed, err := m.Prune(1)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestBackup_DefaultOutputIsListed(t *testing.T) {
	m := newTestManager(t)
	set := liveState(t, t.TempDir())

	result, err := m.Backup(set, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(m.BackupDir(), "aionbd-backup-20260123T100712Z.tar.gz"), result.Output)

	archives, err := m.List()
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, result.Output, archives[0].Path)
}
