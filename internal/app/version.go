package app

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// buildInfo is stamped by ldflags in release builds. `go install` builds
// fall back to the module version recorded in the binary.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

var stamped = buildInfo{Version: "dev", Commit: "none", Date: "unknown"}

var readBuildInfo = debug.ReadBuildInfo

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		stamped.Version = version
	}
	if commit != "" {
		stamped.Commit = commit
	}
	if date != "" {
		stamped.Date = date
	}
}

func currentBuildInfo() buildInfo {
	info := stamped
	info.GoVersion = runtime.Version()
	if info.Version != "dev" {
		return info
	}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

func BuildVersionString() string {
	info := currentBuildInfo()
	return fmt.Sprintf("%s (%s) %s", info.Version, info.Commit, info.Date)
}
