package version

import (
	"fmt"
	"runtime"
)

// Name is the program name printed with the version.
const Name = "dhikr-alarm"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns the program name and semantic version.
func Short() string {
	return Name + " " + Version
}

// Full returns a human-readable version string with commit, build time and platform.
func Full() string {
	return fmt.Sprintf("%s, commit: %s, built at: %s, %s %s/%s",
		Short(), Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
