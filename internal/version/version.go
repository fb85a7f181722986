// Package version exposes build-time version information.
package version

var (
	// Version is the semantic version, overridden at build time via -ldflags.
	Version = "dev"
	// Commit is the VCS revision, overridden at build time via -ldflags.
	Commit = ""
)

// GetInfo returns a printable version string.
func GetInfo() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
