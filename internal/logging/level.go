package logging

import "log/slog"

// LevelTrace is below Debug and enables the most detailed diagnostics,
// such as one line per archive member.
const LevelTrace = slog.LevelDebug - 4

// LevelFromVerbosity maps the number of -v flags to a log level:
// none logs warnings, -v info, -vv debug and -vvv or more trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelName returns the display name for level, naming LevelTrace "TRACE".
func LevelName(level slog.Level) string {
	if level <= LevelTrace {
		return "TRACE"
	}
	return level.String()
}
