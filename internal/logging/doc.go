// Package logging provides structured logging for the aionbd-state CLI using slog.
//
// Records go to stderr as colorized text lines or as JSON, selected with
// --log-format and validated by [ParseFormat]. Color follows [ColorEnabled]:
// only terminals get it, and NO_COLOR or TERM=dumb turn it off.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbosity),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("backup created", "output", path, "entries", n)
//
// # Levels
//
// The CLI maps repeated -v flags through [LevelFromVerbosity]. [LevelTrace]
// sits below Debug and carries one record per verified archive entry. Both
// output formats name it TRACE.
//
// # Several Destinations
//
// [Tee] combines handlers with their own levels, as --log-file does:
//
//	h := logging.Tee(
//		logging.HandlerFor(logging.Config{Level: level, Output: os.Stderr}),
//		logging.HandlerFor(logging.Config{Level: level, Format: logging.FormatJSON, Output: f}),
//	)
//
// # Context
//
// Commands receive their logger through the command context:
//
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Debug("staging", "path", p)
//
// # Testing
//
// [ForTest] routes output through t.Log at trace level, so it shows only for
// failing tests or with -v. [NewDiscard] drops everything and is the default
// logger of a backup.Manager.
package logging
