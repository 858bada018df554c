// Package version holds build metadata stamped in via ldflags.
package version

import "fmt"

// Set at build time, e.g.
//
//	go build -ldflags "-X github.com/idelchi/opskit/internal/version.Version=v0.2.0 \
//	  -X github.com/idelchi/opskit/internal/version.GitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/idelchi/opskit/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
//nolint:gochecknoglobals // Build-time variables
var (
	// Version is the semantic version of the binary.
	Version = "dev"
	// GitCommit is the short hash of the commit the binary was built from.
	GitCommit = "unknown"
	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"
)

// String renders the full version line shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
