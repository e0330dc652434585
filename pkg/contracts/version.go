package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version of the dashboard service and report CLI
	Version = "0.3.0"

	// APIVersion of the dataset HTTP API
	APIVersion = "v1"

	// ProductName is shown in version strings and workbook metadata
	ProductName = "QoE Dashboard"
)

// Set through -ldflags "-X qoedash/pkg/contracts.GitCommit=..." by the build.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by /api/version
type VersionInfo struct {
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// GetVersionInfo collects build and runtime details
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:    Version,
		APIVersion: APIVersion,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetVersionString returns "<product> v<version>"
func GetVersionString() string {
	return fmt.Sprintf("%s v%s", ProductName, Version)
}

// GetFullVersionString appends the commit and platform, as printed by
// qoe-report -version
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (commit %s, built %s, %s, %s)",
		GetVersionString(), info.GitCommit, info.BuildTime, info.GoVersion, info.Platform)
}
