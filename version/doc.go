// Package version reports the build version of scoutkit binaries.
//
// Version, commit, and build time are set at compile time via
// -ldflags, falling back to the Go module VCS stamp:
//
//	go build -ldflags "-X github.com/kbukum/scoutkit/version.Version=1.0.0"
package version
