// Package version reports the build version of dakko.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/nullishamy/dakko/pkg/version.version=...".
var (
	version   = "" //nolint:gochecknoglobals // ldflags target
	gitCommit = "" //nolint:gochecknoglobals // ldflags target
	buildDate = "" //nolint:gochecknoglobals // ldflags target
)

const devVersion = "dev"

// GetVersion returns the release version. Without ldflags it falls back to
// the module version recorded by `go install`, then to "dev".
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion
}

// GetGitCommit returns the commit the binary was built from, if known.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp, if known.
func GetBuildDate() string {
	return buildDate
}

// String returns the version with commit and build date when available.
func String() string {
	s := GetVersion()
	if gitCommit != "" {
		s += fmt.Sprintf(" (commit %s)", gitCommit)
	}
	if buildDate != "" {
		s += fmt.Sprintf(" built %s", buildDate)
	}
	return s
}
