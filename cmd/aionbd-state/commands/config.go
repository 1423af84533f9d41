package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aionbd/aionbd-state/internal/config"
	clierrors "github.com/aionbd/aionbd-state/internal/errors"
	"github.com/aionbd/aionbd-state/pkg/fileutil"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
	Long: `Configuration is resolved from, highest first: command-line flags,
AIONBD_* environment variables, config.yaml (in the working directory, then
in ~/.config/aionbd), and built-in defaults.

Keys: snapshot_path, wal_path, backup_dir, retention, temp_dir.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Example: `  aionbd-state config show
  AIONBD_WAL_PATH=/srv/wal.jsonl aionbd-state config show`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()
		if used := config.FileUsed(); used != "" {
			fmt.Fprintf(w, "# file: %s\n", used)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(effectiveConfig()); err != nil {
			return errors.Wrap(err, "encoding config")
		}
		return errors.Wrap(enc.Close(), "encoding config")
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	Long: `Write the default configuration to --config, or to
~/.config/aionbd/config.yaml when --config is not given.`,
	Annotations: map[string]string{skipConfig: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		target := configPath
		if target == "" {
			target = config.File()
		}

		kind, err := fileutil.Probe(target)
		if err != nil {
			return errors.Wrap(err, "checking config file")
		}
		if kind.Exists() && !configInitForce {
			return clierrors.NewConfigError(errors.Newf("config file %s already exists (use --force to overwrite)", target))
		}

		if err := config.Save(target, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok=config_written path=%s\n", target)
		return nil
	},
}
