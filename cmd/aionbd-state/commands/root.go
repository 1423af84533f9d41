// Package commands implements the CLI commands for aionbd-state.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aionbd/aionbd-state/cmd"
	"github.com/aionbd/aionbd-state/internal/backup"
	"github.com/aionbd/aionbd-state/internal/config"
	clierrors "github.com/aionbd/aionbd-state/internal/errors"
	"github.com/aionbd/aionbd-state/internal/logging"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configPath holds the value of the --config flag.
var configPath string

// appConfig is the configuration loaded for the running command.
var appConfig *config.Config

// openLogFile is closed when Execute returns.
var openLogFile *os.File

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"only log errors")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default: ./config.yaml, then ~/.config/aionbd/config.yaml)")

	// Add version flag
	rootCmd.Version = cmd.Current(backup.FormatVersion).Version
	rootCmd.SetVersionTemplate("aionbd-state version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "aionbd-state",
	Short: "Back up and restore AIONBD persistence state",
	Long: `aionbd-state packages the persistence artifacts of an AIONBD node (the
snapshot file, the write-ahead log, and the directory of incremental WAL
segments) into a single integrity-checked .tar.gz archive, and restores
such an archive onto a node.

Every file in an archive is listed in its manifest with a size and a
SHA-256 digest. Restore re-verifies all of them before any live file is
touched, and refuses to overwrite existing state unless --force is given.

Stop the engine before restoring; the tool does not coordinate with a
running server.`,
	Example: `  # Back up the default data directory into ./backups
  aionbd-state backup

  # Restore onto an empty node
  aionbd-state restore --input backups/aionbd-backup-20260123T100712Z.tar.gz

  # Check an archive without restoring it
  aionbd-state verify --input state.tar.gz

  See Also: aionbd-state list, aionbd-state prune, aionbd-state config show`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return clierrors.NewArgumentError("cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("AIONBD_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return clierrors.NewArgumentError("%v", err)
	}

	handlers := []slog.Handler{logging.HandlerFor(logging.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return clierrors.NewArgumentError("opening log file: %v", err)
		}
		closeLogFile()
		openLogFile = f
		// File output uses JSON format
		handlers = append(handlers, logging.HandlerFor(logging.Config{
			Level:  level,
			Format: logging.FormatJSON,
			Output: f,
		}))
	}

	logger := slog.New(logging.Tee(handlers...))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// loadConfig resolves configuration for commands that need it.
func loadConfig(cmd *cobra.Command) error {
	// help and version work even with a broken config
	if cmd.Name() == "help" || cmd.Annotations[skipConfig] != "" {
		return nil
	}

	config.LoadDotEnv()
	config.Init()
	cfg, err := config.Load(configPath)
	if err != nil {
		return clierrors.NewConfigError(err)
	}
	appConfig = cfg

	logging.FromContext(cmd.Context()).Debug("configuration loaded",
		"file", config.FileUsed(), "snapshot_path", cfg.SnapshotPath, "wal_path", cfg.WALPath)
	return nil
}

func closeLogFile() {
	if openLogFile != nil {
		_ = openLogFile.Close()
		openLogFile = nil
	}
}

// Execute runs the root command with the process arguments and returns the
// exit code. Failures are reported as a single error=<reason> line on stderr.
func Execute() int {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	defer closeLogFile()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return clierrors.ExitSuccess
	}

	exitErr := clierrors.Classify(err)
	if exitErr.Suggestion != "" {
		slog.Default().Info("hint", "suggestion", exitErr.Suggestion)
	}
	fmt.Fprintln(stderr, exitErr.Line())
	return exitErr.Code
}
