// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/gi-bielefeld/scj-carp/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/gi-bielefeld/scj-carp/pkg/buildinfo.Commit=$(git rev-parse HEAD)" ./cmd/carp
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v0.3.0").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// CacheScope is the prefix separating cached results of different
// releases. Development builds share the "dev" scope.
func CacheScope() string {
	return Version + ":"
}
