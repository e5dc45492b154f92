// Package version reports what build of a stage binary is running
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X sentiprep/internal/core/version.version=v0.1.0 -X ...commit=abcd -X ...date=2026-01-02"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// BuildInfo identifies one stage binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build info for service
// without ldflags the commit and date fall back to the VCS stamp the go tool embeds
func Info(service string) BuildInfo {
	b := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	bi, ok := readBuildInfo()
	if !ok {
		return b
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && b.Commit == "none" && len(s.Value) >= 7:
			b.Commit = s.Value[:7]
		case s.Key == "vcs.time" && b.Date == "unknown" && s.Value != "":
			b.Date = s.Value
		}
	}
	return b
}

// String renders "service version (commit, date)"
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", b.Service, b.Version, b.Commit, b.Date)
}
