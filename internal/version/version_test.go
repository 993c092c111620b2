package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetUsesLdflags(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version = "v1.2.0"
	GitCommit = "abcdef1234567890"
	BuildTime = "2024-03-10T12:00:00Z"

	info := Get()
	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, "abcdef1234567890", info.GitCommit)
	assert.Equal(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), info.BuildTime)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
	assert.True(t, info.IsRelease())
	assert.Equal(t, "v1.2.0 (abcdef1)", info.Short())
}

func TestShort(t *testing.T) {
	testCases := []struct {
		name     string
		info     BuildInfo
		expected string
	}{
		{"release with commit", BuildInfo{Version: "v0.3.0", GitCommit: "1234567abc"}, "v0.3.0 (1234567)"},
		{"unknown commit", BuildInfo{Version: "v0.3.0", GitCommit: "unknown"}, "v0.3.0"},
		{"dev build", BuildInfo{Version: "dev-1234567", GitCommit: "1234567abc"}, "dev-1234567"},
		{"short commit", BuildInfo{Version: "dev", GitCommit: "123"}, "dev"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.info.Short())
		})
	}
}

func TestString(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		GitCommit: "abc1234",
		BuildTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		GoVersion: "go1.24.4",
		Platform:  "linux/amd64",
		Modified:  true,
	}

	expected := "Version: v1.0.0\n" +
		"Commit: abc1234 (modified)\n" +
		"Built: 2024-01-02T03:04:05Z\n" +
		"Go: go1.24.4\n" +
		"Platform: linux/amd64"
	assert.Equal(t, expected, info.String())

	bare := BuildInfo{Version: "dev", GitCommit: "unknown", GoVersion: "go1.24.4", Platform: "linux/amd64"}
	assert.Equal(t, "Version: dev\nGo: go1.24.4\nPlatform: linux/amd64", bare.String())
	assert.False(t, bare.IsRelease())
}

func TestParseBuildTime(t *testing.T) {
	testCases := []struct {
		value    string
		expected time.Time
	}{
		{"2024-03-10T12:00:00Z", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
		{"2024-03-10T12:00:00", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
		{"2024-03-10 12:00:00", time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
		{"unknown", time.Time{}},
		{"", time.Time{}},
		{"yesterday", time.Time{}},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			assert.True(t, tc.expected.Equal(parseBuildTime(tc.value)))
		})
	}
}
