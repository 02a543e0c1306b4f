package contracts

import (
	"fmt"
	"runtime"
)

// Overridden at link time, e.g.
//
//	go build -ldflags "-X bvmtdash/pkg/contracts.Version=1.2.0 -X bvmtdash/pkg/contracts.GitCommit=$(git rev-parse --short HEAD)"
var (
	// Version is the release version of the dashboard
	Version = "1.0.0"

	// BuildTime is the UTC build timestamp, empty for development builds
	BuildTime = ""

	// GitCommit is the short commit hash the binary was built from
	GitCommit = "unknown"
)

// APIVersion is the version of the JSON contracts under pkg/contracts/api
const APIVersion = "v1"

// VersionInfo contains detailed version information
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time,omitempty"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		APIVersion:   APIVersion,
	}
}

// GetFullVersionString returns a one-line description of the build
func GetFullVersionString(program string) string {
	info := GetVersionInfo()
	built := info.BuildTime
	if built == "" {
		built = "dev"
	}
	return fmt.Sprintf("%s v%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		program, info.Version, built, info.GitCommit, info.GoVersion, info.OS, info.Architecture)
}
