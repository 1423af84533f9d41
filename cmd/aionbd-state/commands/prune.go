package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/aionbd/aionbd-state/internal/errors"
)

var (
	pruneBackupDir string
	pruneKeep      int
)

func init() {
	pruneCmd.Flags().StringVar(&pruneBackupDir, "backup-dir", "", "backup directory (default from config)")
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", -1, "number of archives to keep (default: retention from config)")
	rootCmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old archives from the backup directory",
	Long: `Remove all but the most recent archives in the backup directory. Only
files named aionbd-backup-<UTC timestamp>.tar.gz are considered.

Each removed archive is printed as removed=<path>, followed by a summary line:

  ok=backups_pruned removed=<n> keep=<n>`,
	Example: `  # Keep the configured number of archives (default 5)
  aionbd-state prune

  # Keep only the newest archive
  aionbd-state prune --keep 1`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("keep") && pruneKeep < 0 {
		return clierrors.NewArgumentError("--keep must be >= 0, got %d", pruneKeep)
	}

	keep := pruneKeep
	if !cmd.Flags().Changed("keep") {
		keep = effectiveConfig().Retention
	}

	removed, err := newManager(cmd, pruneBackupDir).Prune(keep)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, p := range removed {
		fmt.Fprintf(w, "removed=%s\n", p)
	}
	fmt.Fprintf(w, "ok=backups_pruned removed=%d keep=%d\n", len(removed), keep)
	return nil
}
