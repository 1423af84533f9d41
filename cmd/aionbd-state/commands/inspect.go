package commands

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aionbd/aionbd-state/internal/backup"
	clierrors "github.com/aionbd/aionbd-state/internal/errors"
)

var (
	inspectInput  string
	inspectFormat string
)

func init() {
	inspectCmd.Flags().StringVarP(&inspectInput, "input", "i", "", "archive to inspect")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "json", "output format: json, yaml, toml")
	_ = inspectCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the manifest of a verified archive",
	Long: `Verify an archive exactly as "verify" does, then print its manifest.

Nothing is printed for an archive that fails verification.`,
	Example: `  aionbd-state inspect --input state.tar.gz
  aionbd-state inspect --input state.tar.gz --format yaml`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, _ []string) error {
	encode, ok := manifestEncoders[inspectFormat]
	if !ok {
		return clierrors.NewArgumentError("unknown format %q (valid: json, yaml, toml)", inspectFormat)
	}

	manifest, err := newManager(cmd, "").Verify(inspectInput)
	if err != nil {
		return err
	}

	return errors.Wrap(encode(cmd.OutOrStdout(), manifest), "encoding manifest")
}

var manifestEncoders = map[string]func(io.Writer, *backup.Manifest) error{
	"json": func(w io.Writer, m *backup.Manifest) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	},
	"yaml": func(w io.Writer, m *backup.Manifest) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	},
	"toml": func(w io.Writer, m *backup.Manifest) error {
		return toml.NewEncoder(w).Encode(m)
	},
}
