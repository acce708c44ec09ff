// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with -ldflags "-X xsim/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the version line shown by --version.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return Version
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, commit, BuildTime)
}
