// Package cmd holds the build metadata of the ccdir binary.
package cmd

import (
	"runtime"
	"runtime/debug"
)

// Set via -ldflags "-X github.com/thoreinstein/ccdir/cmd.Version=..." at
// release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Info returns the build metadata. Binaries installed with `go install`
// carry no ldflags, so the module version and VCS stamp fill the gaps.
func Info() BuildInfo {
	info := BuildInfo{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
			if len(info.Commit) > 12 {
				info.Commit = info.Commit[:12]
			}
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}
