// Package buildinfo holds the version stamped into sldlayout binaries.
//
// The values are injected at link time:
//
//	go build -ldflags "-X github.com/matzehuels/sldlayout/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/sldlayout/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/sldlayout/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/sldlayout
//
// Binaries built with go install carry no ldflags; their module version
// and VCS stamp are read from the embedded build information instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

const (
	devVersion = "dev"
	noCommit   = "none"
	noDate     = "unknown"
)

var (
	// Version is the release tag, "dev" for local builds.
	Version = devVersion

	// Commit is the git commit SHA.
	Commit = noCommit

	// Date is the build timestamp.
	Date = noDate
)

func init() {
	fill(debug.ReadBuildInfo())
}

// fill completes the values ldflags left unset.
func fill(bi *debug.BuildInfo, ok bool) {
	if !ok {
		return
	}
	if Version == devVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == noCommit:
			Commit = s.Value[:min(len(s.Value), 12)]
		case s.Key == "vcs.time" && Date == noDate:
			Date = s.Value
		}
	}
}

// String returns the build information on one line.
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}

// CacheScope is the prefix of the keys a server writes to a shared cache.
// Layouts computed by different releases never share entries; development
// builds are told apart by commit.
func CacheScope() string {
	if Version == devVersion {
		return devVersion + "-" + Commit + ":"
	}
	return Version + ":"
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
