package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyInput string

func init() {
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "archive to verify")
	_ = verifyCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a backup archive without restoring it",
	Long: `Run every check restore performs (safe member paths, manifest schema,
file sizes and SHA-256 digests) in a private directory, without touching live
state.`,
	Example: `  aionbd-state verify --input backups/aionbd-backup-20260123T100712Z.tar.gz`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		manifest, err := newManager(cmd, "").Verify(verifyInput)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok=backup_verified archive=%s entries=%d\n",
			verifyInput, len(manifest.Entries))
		return nil
	},
}
