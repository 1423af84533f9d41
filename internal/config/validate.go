package config

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Validation errors for configuration fields.
var (
	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNegativeRetention indicates retention is below zero.
	ErrNegativeRetention = errors.New("retention must be >= 0")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	required := []struct {
		field string
		value string
	}{
		{"snapshot_path", cfg.SnapshotPath},
		{"wal_path", cfg.WALPath},
		{"backup_dir", cfg.BackupDir},
	}
	for _, r := range required {
		if err := validatePath(r.value); err != nil {
			errs = append(errs, &PathError{Field: r.field, Path: r.value, Err: err})
		}
	}

	// temp_dir is optional
	if cfg.TempDir != "" {
		if err := validatePath(cfg.TempDir); err != nil {
			errs = append(errs, &PathError{Field: "temp_dir", Path: cfg.TempDir, Err: err})
		}
	}

	if cfg.Retention < 0 {
		errs = append(errs, ErrNegativeRetention)
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	// Clean the path and check it's not empty after cleaning
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
