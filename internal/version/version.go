// Package version provides build information for vdpsim
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	// These will be set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildTime  string `json:"build_time"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	CGOEnabled bool   `json:"cgo_enabled"`
	Tags       string `json:"tags"`
}

// GetBuildInfo returns detailed build information
func GetBuildInfo() BuildInfo {
	bi := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "unknown" {
				bi.GitCommit = setting.Value
			}
		case "vcs.time":
			if BuildTime == "unknown" {
				bi.BuildTime = setting.Value
			}
		case "vcs.modified":
			bi.Modified = setting.Value == "true"
		case "CGO_ENABLED":
			bi.CGOEnabled = setting.Value == "1"
		case "-tags":
			bi.Tags = setting.Value
		}
	}
	return bi
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}

// GetVersion returns a simple version string
func GetVersion() string {
	bi := GetBuildInfo()
	if bi.Version == "dev" && bi.GitCommit != "unknown" {
		return "dev-" + shortCommit(bi.GitCommit)
	}
	return bi.Version
}

// String returns the one-line version banner.
func (bi BuildInfo) String() string {
	s := fmt.Sprintf("vdpsim version %s", bi.Version)
	if bi.GitCommit != "unknown" {
		s += fmt.Sprintf(" (commit %s", shortCommit(bi.GitCommit))
		if bi.Modified {
			s += ", modified"
		}
		s += ")"
	}
	if bi.BuildTime != "unknown" {
		if t, err := time.Parse(time.RFC3339, bi.BuildTime); err == nil {
			s += " built on " + t.Format("2006-01-02 15:04:05")
		} else {
			s += " built on " + bi.BuildTime
		}
	}
	return s + fmt.Sprintf(" with %s for %s/%s", bi.GoVersion, bi.Platform, bi.Arch)
}

// GetDetailedVersion returns a detailed version string
func GetDetailedVersion() string {
	return GetBuildInfo().String()
}

// PrintBuildInfo writes formatted build information to w
func PrintBuildInfo(w io.Writer) {
	bi := GetBuildInfo()

	fmt.Fprintf(w, "vdpsim - cycle-accurate video design simulator\n")
	fmt.Fprintf(w, "Version:     %s\n", bi.Version)
	fmt.Fprintf(w, "Git Commit:  %s\n", bi.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", bi.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", bi.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", bi.Platform, bi.Arch)
	fmt.Fprintf(w, "CGO Enabled: %t\n", bi.CGOEnabled)
	if bi.Tags != "" {
		fmt.Fprintf(w, "Build Tags:  %s\n", bi.Tags)
	}
}
