// Package config provides configuration management for the aionbd-state CLI.
//
// Values are resolved in this order, highest first: command-line flags,
// AIONBD_* environment variables, the configuration file, built-in defaults.
// The environment prefix is the engine's own, so a shell that exports
// AIONBD_SNAPSHOT_PATH for the server backs up the same file.
//
// # Configuration File
//
// config.yaml is searched in the working directory and then in
// ~/.config/aionbd (or $AIONBD_CONFIG_DIR):
//
//	snapshot_path: data/aionbd_snapshot.json
//	wal_path: data/aionbd_wal.jsonl
//	backup_dir: backups
//	retention: 5
//	temp_dir: /var/tmp   # optional
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("") // or an explicit path
//
// Load validates the result with [Validate]: path values must be non-empty
// and free of NUL bytes, and retention must not be negative.
package config
