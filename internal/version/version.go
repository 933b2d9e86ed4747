// Package version reports build information for fnlint.
package version

import (
	"runtime"
	"runtime/debug"
	"slices"
)

// version is set at link time: -ldflags "-X .../internal/version.version=v1.2.3".
var version = "dev"

// Version returns the version string, with the short VCS revision appended
// for development builds.
func Version() string {
	if commit := Commit(); version == "dev" && commit != "" {
		return version + " (" + commit + ")"
	}
	return version
}

// RawVersion returns the version without any suffix.
func RawVersion() string {
	return version
}

// Commit returns the first 12 characters of the VCS revision the binary was
// built from, or "" when unknown.
func Commit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return revision(info.Settings)
}

func revision(settings []debug.BuildSetting) string {
	idx := slices.IndexFunc(settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	})
	if idx < 0 {
		return ""
	}
	rev := settings[idx].Value
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev
}

// Info holds structured version information for machine-readable output.
type Info struct {
	Version   string   `json:"version"`
	Platform  Platform `json:"platform"`
	GoVersion string   `json:"goVersion"`
	GitCommit string   `json:"gitCommit,omitempty"`
}

// Platform describes the OS and architecture.
type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// GetInfo returns structured version information.
func GetInfo() Info {
	return Info{
		Version:   RawVersion(),
		Platform:  Platform{OS: runtime.GOOS, Arch: runtime.GOARCH},
		GoVersion: runtime.Version(),
		GitCommit: Commit(),
	}
}
