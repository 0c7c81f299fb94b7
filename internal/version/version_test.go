package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.NotEmpty(t, info.Version)
	assert.Contains(t, info.Platform, "/")
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
}

func TestApplyBuildSettings(t *testing.T) {
	info := Info{GitCommit: "unknown", BuildDate: "unknown"}
	applyBuildSettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	})

	assert.Equal(t, "0123456789abcdef", info.GitCommit)
	assert.Equal(t, "2026-01-02T03:04:05Z", info.BuildDate)
	assert.True(t, info.Modified)

	injected := Info{GitCommit: "feedface", BuildDate: "yesterday"}
	applyBuildSettings(&injected, []debug.BuildSetting{{Key: "vcs.revision", Value: "other"}})
	assert.Equal(t, "feedface", injected.GitCommit, "ldflags win over build info")
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "1.2.3", GitCommit: "unknown"}, "inboxtui 1.2.3"},
		{Info{Version: "1.2.3", GitCommit: "0123456789abcdef"}, "inboxtui 1.2.3 (01234567)"},
		{Info{Version: "1.2.3", GitCommit: "abc", Modified: true}, "inboxtui 1.2.3 (abc+dirty)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.info.String())
	}
}

func TestGetDetailedVersionString(t *testing.T) {
	detailed := GetDetailedVersionString()

	for _, field := range []string{"inboxtui", "Git commit:", "Build date:", "Go version:", "Platform:"} {
		assert.Contains(t, detailed, field)
	}
}

func TestIsRelease(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })

	Version, GitCommit = "1.0.0", "abc"
	assert.True(t, IsRelease())

	Version = "1.1.0-dev"
	assert.False(t, IsRelease())

	Version, GitCommit = "1.0.0", "unknown"
	assert.False(t, IsRelease())
}
