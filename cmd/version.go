// Package cmd holds the build identity of the aionbd-state binary.
package cmd

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/aionbd/aionbd-state/cmd.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version string
	Commit  string
	Date    string
	// ArchiveFormat is the manifest format_version this binary writes.
	ArchiveFormat int
}

// Current returns the build identity. Values not injected at link time are
// filled from the module build info when `go install` recorded it.
func Current(archiveFormat int) Build {
	b := Build{Version: Version, Commit: Commit, Date: Date, ArchiveFormat: archiveFormat}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && b.Commit == "none":
			b.Commit = s.Value
		case s.Key == "vcs.time" && b.Date == "unknown":
			b.Date = s.Value
		}
	}
	return b
}

// String renders the multi-line output of the version command.
func (b Build) String() string {
	return fmt.Sprintf("aionbd-state version %s\n  commit:  %s\n  built:   %s\n  archive: format_version %d\n",
		b.Version, b.Commit, b.Date, b.ArchiveFormat)
}
