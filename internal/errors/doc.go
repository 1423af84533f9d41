// Package errors provides error handling conventions for the aionbd-state CLI.
//
// Every failing command ends with exactly one line on stderr of the form
//
//	error=<reason> detail="<message>"
//
// and exit code 1. The reason is a stable, machine-parseable token such as
// restore_target_exists or invalid_backup_archive; scripts should match on it
// rather than on the detail text.
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code, a reason and an
// optional suggestion. [Classify] turns any error returned by a command into
// an ExitError by matching the sentinels of the backup package:
//
//	exitErr := aerrors.Classify(err)
//	fmt.Fprintln(os.Stderr, exitErr.Line())
//	os.Exit(exitErr.Code)
package errors
