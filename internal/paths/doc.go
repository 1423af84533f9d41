// Package paths resolves the per-user directories of the aionbd-state CLI.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux the configuration file is found at
// ~/.config/aionbd/config.yaml:
//
//	paths.ConfigDir()      // <ConfigHome>/aionbd
//	paths.ConfigFileName   // config.yaml
//
// Engine artifact paths are not resolved here; they come from configuration
// and are interpreted relative to the working directory like the engine does.
package paths
