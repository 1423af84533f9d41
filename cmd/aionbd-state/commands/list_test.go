package commands

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aionbd/aionbd-state/internal/backup"
)

// seedArchives creates empty archive files named for each hour offset.
func seedArchives(t *testing.T, dir string, hours ...int) []string {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var out []string
	for _, h := range hours {
		p := backup.DefaultArchivePath(dir, base.Add(time.Duration(h)*time.Hour))
		writeFile(t, p, "x")
		out = append(out, p)
	}
	return out
}

func TestList(t *testing.T) {
	dir := isolate(t)
	backups := filepath.Join(dir, "backups")
	seedArchives(t, backups, 0, 2, 1)

	stdout, stderr, code := runCLI(t, "list")
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "aionbd-backup-20260101T020000Z.tar.gz"))
	assert.True(t, strings.HasPrefix(lines[3], "aionbd-backup-20260101T000000Z.tar.gz"))
	assert.Contains(t, lines[1], "1 B")
}

func TestList_JSON(t *testing.T) {
	dir := isolate(t)
	other := filepath.Join(dir, "elsewhere")
	paths := seedArchives(t, other, 0, 1)

	stdout, stderr, code := runCLI(t, "list", "--backup-dir", other, "--json")
	require.Equal(t, 0, code, stderr)

	var got []archiveOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 2)
	assert.Equal(t, paths[1], got[0].Path)
	assert.Equal(t, int64(1), got[0].SizeBytes)
}

func TestList_NoBackups(t *testing.T) {
	isolate(t)
	_, stderr, code := runCLI(t, "list")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "error=no_backups_found "), stderr)
}

func TestPrune(t *testing.T) {
	isolate(t)
	// The default backup_dir is relative, and removed paths are printed
	// under it as configured.
	paths := seedArchives(t, "backups", 0, 1, 2, 3)

	stdout, stderr, code := runCLI(t, "prune", "--keep", "1")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t,
		"removed=backups/aionbd-backup-20260101T020000Z.tar.gz\n"+
			"removed=backups/aionbd-backup-20260101T010000Z.tar.gz\n"+
			"removed=backups/aionbd-backup-20260101T000000Z.tar.gz\n"+
			"ok=backups_pruned removed=3 keep=1\n",
		filepath.ToSlash(stdout))
	assert.FileExists(t, paths[3])
	assert.NoFileExists(t, paths[0])
}

func TestPrune_AbsoluteBackupDir(t *testing.T) {
	dir := isolate(t)
	backups := filepath.Join(dir, "elsewhere")
	paths := seedArchives(t, backups, 0, 1)

	stdout, stderr, code := runCLI(t, "prune", "--backup-dir", backups, "--keep", "1")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "removed="+paths[0]+"\nok=backups_pruned removed=1 keep=1\n", stdout)
}

func TestPrune_RetentionFromConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "retention: 2\n")
	seedArchives(t, filepath.Join(dir, "backups"), 0, 1, 2)

	stdout, stderr, code := runCLI(t, "prune")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasSuffix(stdout, "ok=backups_pruned removed=1 keep=2\n"), stdout)
}

func TestPrune_NegativeKeep(t *testing.T) {
	isolate(t)
	_, stderr, code := runCLI(t, "prune", "--keep", "-3")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "error=invalid_arguments "), stderr)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
