package common

import (
	"os"
	"strings"
)

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X github.com/granahq/grana/internal/common.Version=1.2.3"
var (
	Version   = "dev"
	Build     = "local"
	GitCommit = "unknown"
)

// GetVersion returns the application version.
func GetVersion() string {
	return Version
}

// GetBuild returns the build identifier.
func GetBuild() string {
	return Build
}

// GetGitCommit returns the git commit hash.
func GetGitCommit() string {
	return GitCommit
}

// LoadVersionFromFile reads the .version file as a fallback when ldflags
// were not set (development builds).
func LoadVersionFromFile() {
	if Version != "dev" {
		return
	}
	data, err := os.ReadFile(".version")
	if err != nil {
		return
	}
	v := strings.TrimSpace(string(data))
	if v != "" {
		Version = v
	}
}
