// Package version reports the build version of metagame.
// Values are set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/mtg-metagame/internal/version.Version=v0.3.0 -X github.com/ramonehamilton/mtg-metagame/internal/version.Commit=abc1234"
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"
)

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("metagame %s (commit %s, %s)", Version, Commit, runtime.Version())
}
