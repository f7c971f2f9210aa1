package synclog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauern/dirsync/internal/sync"
	"github.com/klauern/dirsync/internal/util"
)

func sampleResult() *sync.Result {
	stamp := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return &sync.Result{
		SourceRoot: "/data/src",
		TargetRoot: "/data/dst",
		Actions: []sync.ActionResult{
			{Action: sync.Action{
				Kind:      sync.KindCopyToTarget,
				Path:      "a.txt",
				Status:    sync.StatusSuccess,
				Timestamp: stamp,
			}},
			{Action: sync.Action{
				Kind:   sync.KindUpdateSource,
				Path:   "b.txt",
				Status: sync.StatusFailed,
			}, Err: errors.New("copy failed")},
		},
		Counts: sync.Counts{Success: 1, Failed: 1},
	}
}

func TestFromResult_OnlySuccessesPersisted(t *testing.T) {
	report := FromResult(sampleResult())

	util.AssertEqual(t, report.Source, "/data/src")
	util.AssertEqual(t, report.Target, "/data/dst")
	util.AssertEqual(t, len(report.Actions), 1)

	entry := report.Actions[0]
	util.AssertEqual(t, entry.Action, "copy_to_target")
	util.AssertEqual(t, entry.Path, "a.txt")
	util.AssertEqual(t, entry.Status, "success")
	if entry.Timestamp == nil {
		t.Fatal("executed entry should have a timestamp")
	}
	if _, err := time.Parse(time.RFC3339, *entry.Timestamp); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}
}

func TestFromResult_EmptyRunHasEmptyActions(t *testing.T) {
	report := FromResult(&sync.Result{SourceRoot: "s", TargetRoot: "t"})

	data, err := json.Marshal(report)
	util.AssertNoError(t, err)

	// The actions field marshals as [], not null.
	var raw map[string]json.RawMessage
	util.AssertNoError(t, json.Unmarshal(data, &raw))
	util.AssertEqual(t, string(raw["actions"]), "[]")
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := util.CreateTempDir(t)
	path := filepath.Join(dir, "logs", "run.json")

	util.AssertNoError(t, Write(path, FromResult(sampleResult())))

	data, err := os.ReadFile(path)
	util.AssertNoError(t, err)

	var got Report
	util.AssertNoError(t, json.Unmarshal(data, &got))

	util.AssertEqual(t, got.Source, "/data/src")
	util.AssertEqual(t, got.Target, "/data/dst")
	util.AssertEqual(t, len(got.Actions), 1)
	util.AssertEqual(t, got.Actions[0].Action, "copy_to_target")

	if _, err := time.Parse(time.RFC3339, got.Timestamp); err != nil {
		t.Errorf("run timestamp not RFC3339: %v", err)
	}
}

func TestWrite_UnwritablePathErrors(t *testing.T) {
	dir := util.CreateTempDir(t)

	// A file where the log directory should go.
	blocker := filepath.Join(dir, "blocked")
	util.WriteFile(t, blocker, "not a directory")

	err := Write(filepath.Join(blocker, "run.json"), FromResult(sampleResult()))
	if err == nil {
		t.Fatal("expected error writing under a non-directory")
	}
}
