package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Placeholders reported when neither ldflags nor build info provide a value.
const (
	unsetVersion = "dev"
	unsetCommit  = "none"
	unsetDate    = "unknown"
)

// Set via -ldflags "-X github.com/polarityio/ripe/internal/version.Version=…".
var (
	Version = unsetVersion
	Commit  = unsetCommit
	Date    = unsetDate
)

func init() {
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(bi)
	}
}

// fillFromBuildInfo fills in whichever of Version, Commit and Date still hold
// their placeholder. Values injected by the linker are never replaced.
func fillFromBuildInfo(bi *debug.BuildInfo) {
	if Version == unsetVersion {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			Version = strings.TrimPrefix(v, "v")
		}
	}

	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; Commit == unsetCommit && rev != "" {
		Commit = rev[:min(len(rev), 7)]
		if settings["vcs.modified"] == "true" {
			Commit += "-dirty"
		}
	}
	if t := settings["vcs.time"]; Date == unsetDate && t != "" {
		Date = t
	}
}

// Info is the build identity printed by `ripe version`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current build identity.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders i on one line.
func (i Info) String() string {
	return fmt.Sprintf("ripe version %s (commit: %s, built: %s, %s %s)",
		i.Version, i.Commit, i.Date, i.GoVersion, i.Platform)
}
