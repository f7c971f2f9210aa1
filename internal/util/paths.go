// Package util holds small path helpers shared across dirsync.
package util

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ConfigDir returns the default dirsync configuration directory
func ConfigDir() string {
	return filepath.Join(HomeDir(), ".config", "dirsync")
}

// ExpandHome expands a leading ~ or ~/ in a path to the user's home directory
func ExpandHome(path string) string {
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	return path
}

// DefaultLogFileName returns the timestamped sync log filename for a run
// started at the given time, e.g. sync_log_20260823_141530.json.
func DefaultLogFileName(now time.Time) string {
	return "sync_log_" + now.Format("20060102_150405") + ".json"
}
