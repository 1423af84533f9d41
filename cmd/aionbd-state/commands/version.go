package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aionbd/aionbd-state/cmd"
	"github.com/aionbd/aionbd-state/internal/backup"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version information",
	Long:        `Print the version, commit and build date of aionbd-state, and the archive
format version it writes.`,
	Annotations: map[string]string{skipConfig: "true"},
	Args:        cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		fmt.Fprint(c.OutOrStdout(), cmd.Current(backup.FormatVersion))
	},
}
