// Package config provides configuration management for aionbd-state using Viper.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aionbd/aionbd-state/internal/paths"
	"github.com/aionbd/aionbd-state/pkg/fileutil"
)

// EnvPrefix is shared with the engine, so AIONBD_SNAPSHOT_PATH and
// AIONBD_WAL_PATH point both at the same files.
const EnvPrefix = "AIONBD"

// configDirEnv overrides the per-user configuration directory.
const configDirEnv = EnvPrefix + "_CONFIG_DIR"

// Default values, matching the engine's own defaults.
const (
	DefaultSnapshotPath = "data/aionbd_snapshot.json"
	DefaultWALPath      = "data/aionbd_wal.jsonl"
	DefaultBackupDir    = "backups"
	DefaultRetention    = 5
)

// Config represents the top-level configuration structure.
type Config struct {
	// SnapshotPath is the live snapshot file.
	SnapshotPath string `mapstructure:"snapshot_path" yaml:"snapshot_path"`
	// WALPath is the live write-ahead log.
	WALPath string `mapstructure:"wal_path" yaml:"wal_path"`
	// BackupDir holds archives created without an explicit output path.
	BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`
	// Retention is how many archives prune keeps by default.
	Retention int `mapstructure:"retention" yaml:"retention"`
	// TempDir is where staging and extraction trees are created.
	// Empty means the system temp directory.
	TempDir string `mapstructure:"temp_dir" yaml:"temp_dir,omitempty"`
}

// Default returns the configuration used when no file or environment
// variable overrides a value.
func Default() *Config {
	return &Config{
		SnapshotPath: DefaultSnapshotPath,
		WALPath:      DefaultWALPath,
		BackupDir:    DefaultBackupDir,
		Retention:    DefaultRetention,
	}
}

// Dir returns the per-user configuration directory, honoring AIONBD_CONFIG_DIR.
func Dir() string {
	if dir := os.Getenv(configDirEnv); dir != "" {
		return dir
	}
	return paths.ConfigDir()
}

// File returns the per-user configuration file path inside Dir.
func File() string {
	return filepath.Join(Dir(), paths.ConfigFileName)
}

// LoadDotEnv reads .env and then .env.local from the working directory into
// the process environment. Variables that are already set are left alone,
// and missing files are ignored.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Init resets Viper and installs search paths, environment binding and defaults.
// Call this once per command execution before Load.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(Dir())

	// Environment variable support
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	// Defaults
	d := Default()
	viper.SetDefault("snapshot_path", d.SnapshotPath)
	viper.SetDefault("wal_path", d.WALPath)
	viper.SetDefault("backup_dir", d.BackupDir)
	viper.SetDefault("retention", d.Retention)
	viper.SetDefault("temp_dir", d.TempDir)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found. The result is validated and has a leading
// "~/" in path values expanded.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file uses defaults
		case errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	for _, p := range []*string{&cfg.SnapshotPath, &cfg.WALPath, &cfg.BackupDir, &cfg.TempDir} {
		expanded, err := ExpandHome(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	return &cfg, nil
}

// FileUsed returns the configuration file Load read, or "" when defaults
// and environment variables were used alone.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := paths.ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Save writes cfg as YAML to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, cfg); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
