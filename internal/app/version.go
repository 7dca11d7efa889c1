package app

import "fmt"

// Set via ldflags, e.g.
// go build -ldflags "-X github.com/heartmarshall/lexreview/internal/app.Version=1.0.0" ./cmd/lexreview
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is the version string reported at startup and by /health.
func BuildVersion() string {
	return fmt.Sprintf("lexreview %s (commit %s, built %s)", Version, Commit, BuildTime)
}
