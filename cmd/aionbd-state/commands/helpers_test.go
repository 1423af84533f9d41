package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// isolate keeps config files and AIONBD_* variables from the developer's
// environment out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("AIONBD_CONFIG_DIR", t.TempDir())
	for _, key := range []string{"AIONBD_SNAPSHOT_PATH", "AIONBD_WAL_PATH", "AIONBD_BACKUP_DIR", "AIONBD_RETENTION", "AIONBD_TEMP_DIR", "AIONBD_DEBUG"} {
		t.Setenv(key, "")
	}
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// resetFlags restores every flag in the tree to its default so commands can
// be executed repeatedly in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command and returns stdout, stderr and the exit code.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	resetFlags(rootCmd)
	appConfig = nil

	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// seedState writes the snapshot, WAL and one incremental segment used by
// the end-to-end tests and returns the snapshot and WAL paths.
func seedState(t *testing.T, dir string) (string, string) {
	t.Helper()
	snapshot := filepath.Join(dir, "data", "aionbd_snapshot.json")
	wal := filepath.Join(dir, "data", "aionbd_wal.jsonl")
	writeFile(t, snapshot, `{"collections":1}`)
	writeFile(t, wal, `{"type":"upsert"}`)
	writeFile(t, filepath.Join(dir, "data", "aionbd_snapshot.incrementals", "000001.jsonl"), `{"segment":1}`)
	return snapshot, wal
}
