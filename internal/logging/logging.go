package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

// Format selects how log records are rendered.
type Format string

const (
	// FormatText is the colorized, human-oriented line format.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for anything but text or json.
var ErrUnknownFormat = errors.New("unknown log format")

// ParseFormat validates a --log-format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q (valid: text, json)", s)
	}
}

// Config describes one log destination.
type Config struct {
	// Level is the minimum level written.
	Level slog.Leveler
	// Format defaults to FormatText.
	Format Format
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger writing to a single destination.
func New(cfg Config) *slog.Logger {
	return slog.New(HandlerFor(cfg))
}

// HandlerFor builds the handler for cfg. Both formats name LevelTrace
// records "TRACE".
func HandlerFor(cfg Config) slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	if cfg.Format == FormatJSON {
		opts.ReplaceAttr = renameLevel
		return slog.NewJSONHandler(out, opts)
	}
	return NewHandler(out, opts)
}

func renameLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LevelName(level))
		}
	}
	return a
}

// NewDiscard returns a logger that drops every record.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForTest returns a logger that writes through tb.Log at trace level, so
// output is shown only for failing tests or with -v.
func ForTest(tb testing.TB) *slog.Logger {
	tb.Helper()
	return New(Config{
		Level:  LevelTrace,
		Format: FormatText,
		Output: tbWriter{tb},
	})
}

// tbWriter logs each line written to it as its own test log entry.
type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	for line := range strings.Lines(string(p)) {
		w.tb.Log(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}
