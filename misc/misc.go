// Package misc keeps small helpers needed across the program which do not
// belong anywhere else - mostly build identification.
package misc

import (
	"runtime/debug"
)

const appName = "vgr"

// Set at build time via -ldflags "-X vgr/misc.version=... -X vgr/misc.gitHash=...".
var (
	version = ""
	gitHash = ""
)

// GetAppName returns program name to be used in logs, reports and temporary file names.
func GetAppName() string {
	return appName
}

// GetVersion returns program version - either set at build time or derived
// from module build information.
func GetVersion() string {
	if len(version) != 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) != 0 {
		return bi.Main.Version
	}
	return "unknown"
}

// GetGitHash returns VCS revision recorded in build information.
func GetGitHash() string {
	if len(gitHash) != 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
