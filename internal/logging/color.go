package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is implemented by *os.File and wrappers exposing a descriptor.
type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// IsTerminal reports whether w writes to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ColorEnabled reports whether ANSI colors should be written to w. NO_COLOR
// (any value, see https://no-color.org) and TERM=dumb turn color off.
func ColorEnabled(w io.Writer) bool {
	return colorAllowed(os.LookupEnv, IsTerminal(w))
}

func colorAllowed(lookup func(string) (string, bool), terminal bool) bool {
	if _, set := lookup("NO_COLOR"); set {
		return false
	}
	if v, _ := lookup("TERM"); v == "dumb" {
		return false
	}
	return terminal
}
