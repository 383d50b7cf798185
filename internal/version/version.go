// Package version provides build information for nescore
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X nescore/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
	Modified  bool   `json:"modified"`
}

// GetBuildInfo returns the linker supplied values, completed from the VCS
// stamp of the binary where they are missing
func GetBuildInfo() BuildInfo {
	buildInfo := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if GitCommit == "unknown" {
					buildInfo.GitCommit = setting.Value
				}
			case "vcs.time":
				if BuildTime == "unknown" {
					buildInfo.BuildTime = setting.Value
				}
			case "vcs.modified":
				buildInfo.Modified = setting.Value == "true"
			}
		}
	}

	return buildInfo
}

// GetVersion returns a short version string
func GetVersion() string {
	return GetBuildInfo().short()
}

func (b BuildInfo) short() string {
	if b.Version != "dev" {
		return b.Version
	}
	if len(b.GitCommit) >= 7 && b.GitCommit != "unknown" {
		v := "dev-" + b.GitCommit[:7]
		if b.Modified {
			v += "+dirty"
		}
		return v
	}
	return b.Version
}

// PrintBuildInfo writes the build information, one field per line
func PrintBuildInfo(w io.Writer, program string) {
	b := GetBuildInfo()
	fmt.Fprintf(w, "%s %s\n", program, b.short())
	fmt.Fprintf(w, "Git Commit:  %s\n", b.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", b.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", b.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", b.Platform, b.Arch)
}
