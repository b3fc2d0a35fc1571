// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with -ldflags "-X puzzle-matcher/internal/version.Version=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// String formats the version for the CLI banner.
func String() string {
	return fmt.Sprintf("puzzlematch %s (%s)", Version, GitCommit)
}
