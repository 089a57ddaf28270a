// Package version carries build metadata for prefstore.
//
// Release builds set the variables through ldflags:
//
//	go build -ldflags "-X github.com/jmylchreest/prefstore/internal/version.Version=1.4.0 \
//	                   -X github.com/jmylchreest/prefstore/internal/version.Commit=$(git rev-parse HEAD) \
//	                   -X github.com/jmylchreest/prefstore/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"log/slog"
	"runtime"
)

// ApplicationName is the canonical name of this application.
const ApplicationName = "prefstore"

var (
	// Version is "dev" for local builds, otherwise a SemVer string.
	Version = "dev"
	// Commit is the full git SHA the binary was built from.
	Commit = "unknown"
	// Date is the RFC3339 build time.
	Date = "unknown"
)

// Info is the JSON form printed by `prefstore version --json`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo collects the build and runtime metadata.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// shortCommit returns the first 8 characters of Commit, or "" when unknown.
func shortCommit() string {
	if Commit == "unknown" || len(Commit) < 8 {
		return ""
	}
	return Commit[:8]
}

// String is the long form used by `prefstore version`.
func String() string {
	info := GetInfo()
	if c := shortCommit(); c != "" {
		return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s, %s)",
			ApplicationName, info.Version, c, info.Date, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("%s version %s (%s, %s)", ApplicationName, info.Version, info.GoVersion, info.Platform)
}

// Short is the form reported by --version and the settings endpoint.
func Short() string {
	if c := shortCommit(); c != "" {
		return fmt.Sprintf("%s %s (%s)", ApplicationName, Version, c)
	}
	return ApplicationName + " " + Version
}

// LogAttrs returns the metadata as slog attributes for the startup line.
func LogAttrs() []any {
	info := GetInfo()
	return []any{
		slog.String("version", info.Version),
		slog.String("commit", info.Commit),
		slog.String("built", info.Date),
		slog.String("go", info.GoVersion),
		slog.String("platform", info.Platform),
	}
}
