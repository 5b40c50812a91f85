// Package info holds the program's meta information.
package info

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

var (
	name = "urngd"

	version = "dev build"

	info     *Info
	loadInfo sync.Once
)

// Info holds the program's meta information.
type Info struct {
	Name    string
	Version string

	Commit     string
	CommitTime string
	Dirty      bool
}

// Set sets the meta information. This should be the first thing the
// program does, usually via -ldflags.
func Set(setName string, setVersion string) {
	name = setName
	if setVersion != "" {
		version = strings.TrimSpace(strings.TrimPrefix(setVersion, "v"))
	}
}

// GetInfo returns the meta information, completed with vcs build info
// where available.
func GetInfo() *Info {
	loadInfo.Do(func() {
		info = &Info{
			Name:    name,
			Version: version,
		}

		buildInfo, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Commit = setting.Value
			case "vcs.time":
				info.CommitTime = setting.Value
			case "vcs.modified":
				info.Dirty = setting.Value == "true"
			}
		}
	})

	return info
}

// Version returns the version string.
func Version() string {
	return GetInfo().Version
}

// FullVersion returns a human readable version summary.
func FullVersion() string {
	nfo := GetInfo()
	builder := new(strings.Builder)

	fmt.Fprintf(builder, "%s %s\n", nfo.Name, nfo.Version)
	if nfo.Commit != "" {
		dirty := ""
		if nfo.Dirty {
			dirty = " (dirty)"
		}
		fmt.Fprintf(builder, "  commit %s%s at %s\n", nfo.Commit, dirty, nfo.CommitTime)
	}
	fmt.Fprintf(builder, "  built with %s for %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return builder.String()
}
