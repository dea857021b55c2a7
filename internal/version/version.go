// Package version holds build metadata set through linker flags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/sitemapper/internal/version.Version=v1.0.0 \
//	  -X git.home.luguber.info/inful/sitemapper/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import "fmt"

var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version. Unknown build
// metadata is left out.
func String() string {
	switch {
	case GitCommit != "unknown" && BuildTime != "unknown":
		return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
	case GitCommit != "unknown":
		return fmt.Sprintf("%s (commit %s)", Version, GitCommit)
	default:
		return Version
	}
}
