// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "dev"

	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"

	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"

	// GoVersion is the Go version used to build
	GoVersion = runtime.Version()
)

// Short returns the version and abbreviated commit, e.g. "v0.3.1 (1a2b3c4)".
func Short() string {
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, commit)
}
