// Package version reports the build of the inboxtui binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version is the semantic version number
	Version = "0.3.0-dev"

	// GitCommit is injected at build time with -ldflags
	GitCommit = "unknown"

	// BuildDate is injected at build time with -ldflags
	BuildDate = "unknown"
)

// Info contains version information
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the version information, filling the commit from the
// module build info when it was not injected
func GetInfo() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi.Settings)
	}
	return info
}

func applyBuildSettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// String returns "inboxtui <version> (<short commit>)"
func (i Info) String() string {
	if i.GitCommit == "unknown" || i.GitCommit == "" {
		return "inboxtui " + i.Version
	}
	commit := i.GitCommit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("inboxtui %s (%s)", i.Version, commit)
}

// GetVersionString returns the short version line
func GetVersionString() string {
	return GetInfo().String()
}

// GetDetailedVersionString returns the --version output
func GetDetailedVersionString() string {
	info := GetInfo()
	var b strings.Builder
	fmt.Fprintf(&b, "inboxtui %s\n", info.Version)
	fmt.Fprintf(&b, "Git commit: %s\n", info.GitCommit)
	fmt.Fprintf(&b, "Build date: %s\n", info.BuildDate)
	fmt.Fprintf(&b, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(&b, "Platform: %s", info.Platform)
	return b.String()
}

// IsRelease reports whether this is a tagged build rather than a dev build
func IsRelease() bool {
	return Version != "" && GitCommit != "unknown" && !strings.Contains(Version, "dev")
}
