package errors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/aionbd/aionbd-state/internal/backup"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates the command failed. Every operational failure
	// uses this code; the reason on stderr tells them apart.
	ExitFailure = 1
)

// Machine-parseable failure reasons printed as error=<reason>.
const (
	ReasonInvalidArtifactPath = "invalid_artifact_path"
	ReasonNoPersistenceFiles  = "no_persistence_files_found"
	ReasonArchiveNotFound     = "backup_archive_not_found"
	ReasonInvalidArchive      = "invalid_backup_archive"
	ReasonTargetExists        = "restore_target_exists"
	ReasonPayloadEmpty        = "restore_payload_is_empty"
	ReasonIOFailure           = "io_failure"
	ReasonNoBackups           = "no_backups_found"
	ReasonInvalidConfig       = "invalid_configuration"
	ReasonInvalidArguments    = "invalid_arguments"
)

// Sentinel errors for common failure conditions.
var (
	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArguments indicates a flag or argument was missing or malformed.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ExitError wraps an error with an exit code, a failure reason and an
// optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Reason is the machine-parseable failure reason.
	Reason string

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewArgumentError creates an ExitError for a bad command line.
func NewArgumentError(format string, args ...any) *ExitError {
	return &ExitError{
		Err:    errors.Mark(errors.Newf(format, args...), ErrInvalidArguments),
		Code:   ExitFailure,
		Reason: ReasonInvalidArguments,
	}
}

// NewConfigError creates an ExitError for a configuration problem.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        errors.Mark(err, ErrInvalidConfig),
		Code:       ExitFailure,
		Reason:     ReasonInvalidConfig,
		Suggestion: "Run: aionbd-state config show",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Line renders the single stderr line for the failure:
//
//	error=<reason> detail="<message>"
//
// The detail is quoted so the line never spans more than one row.
func (e *ExitError) Line() string {
	reason := e.Reason
	if reason == "" {
		reason = ReasonIOFailure
	}
	detail := ""
	if e.Err != nil {
		detail = e.Err.Error()
	}
	return "error=" + reason + " detail=" + strconv.Quote(detail)
}

// reasons maps backup failures to their reason, most specific first.
var reasons = []struct {
	target error
	reason string
}{
	{backup.ErrInvalidArtifactPath, ReasonInvalidArtifactPath},
	{backup.ErrNoPersistenceData, ReasonNoPersistenceFiles},
	{backup.ErrArchiveNotFound, ReasonArchiveNotFound},
	{backup.ErrTargetsExist, ReasonTargetExists},
	{backup.ErrNothingToRestore, ReasonPayloadEmpty},
	{backup.ErrInvalidArchive, ReasonInvalidArchive},
	{backup.ErrNoBackupsFound, ReasonNoBackups},
	{ErrInvalidConfig, ReasonInvalidConfig},
	{ErrInvalidArguments, ReasonInvalidArguments},
	{backup.ErrIO, ReasonIOFailure},
}

// Classify converts err into an ExitError. An ExitError already in the chain
// is returned as is (with its reason filled in when missing). Anything
// unrecognised is reported as an I/O failure.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Reason == "" {
			exitErr.Reason = reasonFor(exitErr.Err)
		}
		return exitErr
	}

	e := &ExitError{
		Err:    err,
		Code:   ExitFailure,
		Reason: reasonFor(err),
	}
	if e.Reason == ReasonTargetExists {
		e.Suggestion = "Re-run with --force to replace the existing files"
	}
	return e
}

func reasonFor(err error) string {
	if err == nil {
		return ReasonIOFailure
	}
	for _, r := range reasons {
		if errors.Is(err, r.target) {
			return r.reason
		}
	}
	// cobra reports flag problems as plain errors
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown flag") || strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.HasPrefix(msg, "required flag") || strings.HasPrefix(msg, "invalid argument") ||
		strings.HasPrefix(msg, "unknown command") || strings.Contains(msg, "flag needs an argument") {
		return ReasonInvalidArguments
	}
	return ReasonIOFailure
}
