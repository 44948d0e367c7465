package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via -ldflags; Commit and BuildTime fall back to
// the module's VCS stamp when unset.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Short returns "version" or "version-commit" for log lines and the
// health endpoint.
func Short() string {
	if c := commit(); c != "" {
		return fmt.Sprintf("%s-%s", Version, c)
	}
	return Version
}

// Full returns the long form shown by `scout --version`.
func Full() string {
	s := Short()
	if t := buildTime(); t != "" {
		s += fmt.Sprintf(" (built %s)", t)
	}
	return s
}

func commit() string {
	if Commit != "" {
		return shorten(Commit)
	}
	return shorten(vcsSetting("vcs.revision"))
}

func buildTime() string {
	if BuildTime != "" {
		return BuildTime
	}
	return vcsSetting("vcs.time")
}

func shorten(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
