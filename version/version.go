package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const packageName = "dendra-archive-diff"

// Info describes one build of jardiff.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Package string `json:"package"`
	// Dirty is set when the commit came from the go tool's VCS stamp and the
	// working tree had uncommitted changes.
	Dirty bool `json:"dirty,omitempty"`
}

// GetInfo collects the build's version information. Values stamped through
// -ldflags take precedence over the module version and VCS settings the go
// tool records in the binary.
func GetInfo() Info {
	info := Info{Package: packageName}
	if Version != "dev" {
		info.Version = Version
	}
	if Commit != "unknown" {
		info.Commit = Commit
	}
	if Date != "unknown" {
		info.Date = Date
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fill(bi)
	}

	if info.Version == "" {
		info.Version = "development"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}

// fill sets the fields still empty from bi.
func (i *Info) fill(bi *debug.BuildInfo) {
	if i.Version == "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	stampedCommit := i.Commit == ""
	var modified bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if stampedCommit {
				i.Commit = s.Value
			}
		case "vcs.time":
			if i.Date == "" {
				i.Date = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	i.Dirty = stampedCommit && i.Commit != "" && modified
}

// GetFullVersion returns what `jardiff --version` prints.
func GetFullVersion() string {
	return GetInfo().String()
}

func (i Info) String() string {
	if i.Commit == "unknown" || len(i.Commit) <= 7 {
		return i.Version
	}
	commit := i.Commit[:7]
	if i.Dirty {
		commit += "-dirty"
	}
	if i.Date != "unknown" {
		return fmt.Sprintf("%s (%s, built %s)", i.Version, commit, i.Date)
	}
	return fmt.Sprintf("%s (%s)", i.Version, commit)
}
