package common

import (
	"fmt"
	"runtime"
)

const (
	ProjectName    = "Token Strategy Lab"
	ProjectVersion = "0.3.0"
	ProjectRepo    = "github.com/ducminhle1904/token-strategy-lab"
)

// Build information, set with -ldflags "-X .../cmd/common.BuildCommit=..."
var (
	BuildDate   = "unknown"
	BuildCommit = "dev"
)

// VersionInfo contains version and build information
type VersionInfo struct {
	ProjectName  string `json:"project_name"`
	Version      string `json:"version"`
	BuildDate    string `json:"build_date"`
	BuildCommit  string `json:"build_commit"`
	GoVersion    string `json:"go_version"`
	Architecture string `json:"architecture"`
	Repository   string `json:"repository"`
}

// GetVersionInfo returns complete version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		ProjectName:  ProjectName,
		Version:      ProjectVersion,
		BuildDate:    BuildDate,
		BuildCommit:  BuildCommit,
		GoVersion:    runtime.Version(),
		Architecture: runtime.GOOS + "/" + runtime.GOARCH,
		Repository:   ProjectRepo,
	}
}

// VersionString formats the version block printed by -version
func VersionString(appName string) string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s v%s\nBuild: %s (%s)\nGo: %s (%s)\n",
		appName, info.Version, info.BuildCommit, info.BuildDate, info.GoVersion, info.Architecture)
}

// GetFullVersion returns a full version string with build info
func GetFullVersion() string {
	return fmt.Sprintf("%s-%s (%s)", ProjectVersion, BuildCommit, BuildDate)
}

// IsDevBuild returns true if this is a development build
func IsDevBuild() bool {
	return BuildCommit == "dev"
}
