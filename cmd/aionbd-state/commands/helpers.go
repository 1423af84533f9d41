package commands

import (
	"github.com/spf13/cobra"

	"github.com/aionbd/aionbd-state/internal/backup"
	"github.com/aionbd/aionbd-state/internal/config"
	"github.com/aionbd/aionbd-state/internal/logging"
)

// effectiveConfig returns the loaded configuration, or defaults when the
// command ran without loading one.
func effectiveConfig() *config.Config {
	if appConfig == nil {
		return config.Default()
	}
	return appConfig
}

// flagOr returns the flag value when the user set it, otherwise fallback.
func flagOr(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

// artifactsFor resolves the live artifact set from flags and configuration.
func artifactsFor(cmd *cobra.Command, snapshotPath, walPath string) backup.ArtifactSet {
	cfg := effectiveConfig()
	return backup.NewArtifactSet(
		flagOr(cmd, "snapshot-path", snapshotPath, cfg.SnapshotPath),
		flagOr(cmd, "wal-path", walPath, cfg.WALPath),
	)
}

// newManager builds a backup manager from configuration. backupDir overrides
// the configured directory when non-empty.
func newManager(cmd *cobra.Command, backupDir string) *backup.Manager {
	cfg := effectiveConfig()
	dir := cfg.BackupDir
	if backupDir != "" {
		dir = backupDir
	}
	return backup.NewManager(
		backup.WithBackupDir(dir),
		backup.WithRetentionCount(cfg.Retention),
		backup.WithTempDir(cfg.TempDir),
		backup.WithLogger(logging.FromContext(cmd.Context())),
	)
}

// addArtifactFlags registers --snapshot-path and --wal-path on cmd.
func addArtifactFlags(cmd *cobra.Command, snapshotPath, walPath *string) {
	cmd.Flags().StringVar(snapshotPath, "snapshot-path", config.DefaultSnapshotPath,
		"live snapshot file (incrementals directory is derived from it)")
	cmd.Flags().StringVar(walPath, "wal-path", config.DefaultWALPath,
		"live write-ahead log file")
}

// boolInt renders b as 1 or 0.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
