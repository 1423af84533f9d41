package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	restoreInput        string
	restoreSnapshotPath string
	restoreWALPath      string
	restoreForce        bool
)

func init() {
	restoreCmd.Flags().StringVarP(&restoreInput, "input", "i", "", "archive to restore")
	addArtifactFlags(restoreCmd, &restoreSnapshotPath, &restoreWALPath)
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false,
		"replace existing snapshot, WAL and incrementals")
	_ = restoreCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore persistence files from a backup archive",
	Long: `Restore the snapshot, WAL and incrementals directory from an archive made
by "aionbd-state backup".

The archive is extracted into a private directory first. Members with
absolute paths, paths escaping the archive, or types other than regular files
and directories are rejected before anything is written. Every file is then
checked against manifest.json; any missing file, size or digest mismatch, or
unlisted file fails the restore with no change to live state.

If any target already exists, the restore is refused and all existing targets
are listed. With --force they are replaced: files are copied to a temporary
sibling and renamed over the target; the incrementals directory is copied in
full beside the target before the old one is removed and the new one moved
into place.

Stop the engine before restoring.`,
	Example: `  # Restore onto an empty data directory
  aionbd-state restore --input backups/aionbd-backup-20260123T100712Z.tar.gz

  # Replace existing state
  aionbd-state restore --input state.tar.gz --force

  See Also:
    aionbd-state verify - Check an archive without restoring it`,
	Args: cobra.NoArgs,
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, _ []string) error {
	targets := artifactsFor(cmd, restoreSnapshotPath, restoreWALPath)
	mgr := newManager(cmd, "")

	result, err := mgr.Restore(restoreInput, targets, restoreForce)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"ok=restore_completed archive=%s snapshot=%s wal=%s incremental=%s force=%d\n",
		result.Archive, result.Targets.SnapshotPath, result.Targets.WALPath,
		result.Targets.IncrementalPath, boolInt(result.Force))
	return nil
}
