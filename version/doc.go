// Package version reports the build of jardiff.
//
// Release builds stamp Version, Commit and Date through -ldflags:
//
//	go build -ldflags "-X github.com/dendrascience/dendra-archive-diff/version.Version=v1.0.0 -X github.com/dendrascience/dendra-archive-diff/version.Commit=abc123"
//
// Builds without them fall back to the module version and VCS settings the
// go tool records, and finally to development defaults. GetFullVersion is
// what `jardiff --version` prints.
package version
