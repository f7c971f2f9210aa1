package util

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExpandHome(t *testing.T) {
	home := HomeDir()
	if home == "" {
		t.Skip("no home directory available")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/logs", filepath.Join(home, "logs")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~user/path", "~user/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			AssertEqual(t, ExpandHome(tt.input), tt.want)
		})
	}
}

func TestDefaultLogFileName(t *testing.T) {
	stamp := time.Date(2024, 7, 15, 14, 30, 45, 0, time.UTC)
	got := DefaultLogFileName(stamp)

	AssertEqual(t, got, "sync_log_20240715_143045.json")
	if !strings.HasPrefix(got, "sync_log_") || !strings.HasSuffix(got, ".json") {
		t.Errorf("unexpected log file name shape: %s", got)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if !strings.HasSuffix(dir, filepath.Join(".config", "dirsync")) {
		t.Errorf("unexpected config dir: %s", dir)
	}
}
