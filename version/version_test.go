package version

import (
	"strings"
	"testing"
)

func setBuildVars(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origTime := Version, Commit, BuildTime
	Version, Commit, BuildTime = version, commit, buildTime
	t.Cleanup(func() { Version, Commit, BuildTime = origVersion, origCommit, origTime })
}

func TestShortWithCommit(t *testing.T) {
	setBuildVars(t, "1.2.0", "abcdef1234567890", "")
	if got := Short(); got != "1.2.0-abcdef1" {
		t.Errorf("Short() = %q, want %q", got, "1.2.0-abcdef1")
	}
}

func TestShortTruncatesCommit(t *testing.T) {
	setBuildVars(t, "1.0.0", "abc", "")
	if got := Short(); got != "1.0.0-abc" {
		t.Errorf("Short() = %q, short commits should pass through", got)
	}
}

func TestFullIncludesBuildTime(t *testing.T) {
	setBuildVars(t, "1.2.0", "abcdef1234567890", "2026-08-01T12:00:00Z")
	got := Full()
	if !strings.HasPrefix(got, "1.2.0-abcdef1") {
		t.Errorf("Full() = %q, want short version prefix", got)
	}
	if !strings.Contains(got, "(built 2026-08-01T12:00:00Z)") {
		t.Errorf("Full() = %q, want build time suffix", got)
	}
}

func TestFullWithoutBuildMetadata(t *testing.T) {
	setBuildVars(t, "dev", "", "")
	// Under `go test` there is no VCS stamp, so dev builds report the
	// bare version.
	got := Full()
	if !strings.HasPrefix(got, "dev") {
		t.Errorf("Full() = %q, want dev prefix", got)
	}
}
