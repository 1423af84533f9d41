package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	backupSnapshotPath string
	backupWALPath      string
	backupOutput       string
	backupDir          string
)

func init() {
	addArtifactFlags(backupCmd, &backupSnapshotPath, &backupWALPath)
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "",
		"archive path (default: <backup-dir>/aionbd-backup-<UTC timestamp>.tar.gz)")
	backupCmd.Flags().StringVar(&backupDir, "backup-dir", "",
		"directory for archives without --output (default from config)")
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a backup archive of the persistence files",
	Long: `Create a gzip-compressed tar archive of the snapshot file, the WAL file
and the incrementals directory.

The incrementals directory sits next to the snapshot with its extension
replaced by ".incrementals". Missing artifacts are skipped, but at least one
must exist. Every archived file is recorded in manifest.json with its size and
SHA-256 digest.

The archive is written to a temporary file and renamed into place, so an
interrupted backup never leaves a truncated archive at the output path. An
existing file at the output path is replaced.

On success a single line is printed:

  ok=backup_created output=<path> entries=<n> snapshot_present=<bool> wal_present=<bool> incremental_present=<bool>`,
	Example: `  # Back up the configured paths into the backup directory
  aionbd-state backup

  # Explicit paths and output
  aionbd-state backup --snapshot-path data/aionbd_snapshot.json \
    --wal-path data/aionbd_wal.jsonl --output /tmp/state.tar.gz

  See Also:
    aionbd-state verify  - Check an archive
    aionbd-state restore - Restore an archive`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, _ []string) error {
	artifacts := artifactsFor(cmd, backupSnapshotPath, backupWALPath)
	mgr := newManager(cmd, backupDir)

	result, err := mgr.Backup(artifacts, backupOutput)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"ok=backup_created output=%s entries=%d snapshot_present=%t wal_present=%t incremental_present=%t\n",
		result.Output, result.Entries, result.SnapshotPresent, result.WALPresent, result.IncrementalPresent)
	return nil
}
