// Package synclog persists the per-run audit record of executed actions.
//
// One JSON document is written per invocation. Logging is best-effort
// observability: a write failure is reported to the caller but never rolls
// back filesystem changes that already happened.
package synclog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauern/dirsync/internal/logging"
	"github.com/klauern/dirsync/internal/sync"
)

// Entry is one executed action in the persisted log.
type Entry struct {
	Action    string  `json:"action"`
	Path      string  `json:"path"`
	Timestamp *string `json:"timestamp"`
	Status    string  `json:"status"`
}

// Report is the full per-run document.
type Report struct {
	Timestamp string  `json:"timestamp"`
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Actions   []Entry `json:"actions"`
}

// FromResult builds a report from an execution result. Only successfully
// applied actions appear; failures are reported to the user, not persisted
// as completed work.
func FromResult(result *sync.Result) Report {
	report := Report{
		Timestamp: time.Now().Format(time.RFC3339),
		Source:    result.SourceRoot,
		Target:    result.TargetRoot,
		Actions:   make([]Entry, 0),
	}

	for _, action := range result.Executed() {
		entry := Entry{
			Action: string(action.Kind),
			Path:   action.Path,
			Status: string(action.Status),
		}
		if !action.Timestamp.IsZero() {
			ts := action.Timestamp.Format(time.RFC3339)
			entry.Timestamp = &ts
		}
		report.Actions = append(report.Actions, entry)
	}

	return report
}

// Write persists the report to path as indented JSON.
func Write(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding sync log: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating sync log directory %q: %w", dir, err)
		}
	}

	// #nosec G306 - log is a user-facing report
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sync log %q: %w", path, err)
	}

	logging.Debug("sync log written",
		logging.Path(path),
		logging.Count(len(report.Actions)),
	)

	return nil
}
