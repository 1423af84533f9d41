package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aionbd/aionbd-state/internal/backup"
	"github.com/aionbd/aionbd-state/internal/logging"
)

var (
	listBackupDir string
	listJSON      bool
)

func init() {
	listCmd.Flags().StringVar(&listBackupDir, "backup-dir", "", "backup directory (default from config)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archives in the backup directory",
	Long: `List the archives named aionbd-backup-<UTC timestamp>.tar.gz in the backup
directory, most recent first. Other files are ignored.`,
	Example: `  # List archives
  aionbd-state list

  # Output as JSON
  aionbd-state list --json

  See Also:
    aionbd-state prune - Remove old archives`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// archiveOutput represents a single archive in JSON output.
type archiveOutput struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

func runList(cmd *cobra.Command, _ []string) error {
	archives, err := newManager(cmd, listBackupDir).List()
	if err != nil {
		return err
	}

	if listJSON {
		return outputListJSON(cmd.OutOrStdout(), archives)
	}
	return outputListTabular(cmd.OutOrStdout(), archives)
}

func outputListJSON(w io.Writer, archives []backup.ArchiveInfo) error {
	output := make([]archiveOutput, len(archives))
	for i, a := range archives {
		output[i] = archiveOutput{
			Name:      a.Name,
			Path:      a.Path,
			CreatedAt: a.CreatedAt,
			SizeBytes: a.SizeBytes,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(output), "encoding output")
}

func outputListTabular(w io.Writer, archives []backup.ArchiveInfo) error {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	if !logging.ColorEnabled(w) {
		bold.DisableColor()
		green.DisableColor()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", bold.Sprint("NAME"), bold.Sprint("CREATED"), bold.Sprint("SIZE"))
	for _, a := range archives {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			green.Sprint(a.Name),
			a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			formatSize(a.SizeBytes))
	}
	return errors.Wrap(tw.Flush(), "writing output")
}

// formatSize renders n bytes with a binary unit suffix.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
