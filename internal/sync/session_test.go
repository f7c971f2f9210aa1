package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauern/dirsync/internal/util"
)

func TestSession_AnalyzeAndExecute(t *testing.T) {
	source := util.CreateTempDir(t)
	target := util.CreateTempDir(t)
	util.WriteFile(t, filepath.Join(source, "a.txt"), "alpha")
	util.WriteFile(t, filepath.Join(source, "docs", "b.txt"), "beta")
	util.WriteFile(t, filepath.Join(target, "c.txt"), "gamma")

	session := NewSession(source, target, Options{})
	util.AssertNoError(t, session.Analyze(context.Background()))

	util.AssertEqual(t, len(session.Plan), 3)
	util.AssertEqual(t, len(session.Conflicts), 0)
	util.AssertEqual(t, session.InSync(), false)

	result, err := session.Execute(context.Background(), nil)
	util.AssertNoError(t, err)
	util.AssertEqual(t, result.Counts.Success, 3)
	util.AssertEqual(t, result.Counts.Failed, 0)

	util.AssertEqual(t, readFile(t, filepath.Join(target, "a.txt")), "alpha")
	util.AssertEqual(t, readFile(t, filepath.Join(target, "docs", "b.txt")), "beta")
	util.AssertEqual(t, readFile(t, filepath.Join(source, "c.txt")), "gamma")
}

func TestSession_Idempotence(t *testing.T) {
	source := util.CreateTempDir(t)
	target := util.CreateTempDir(t)
	util.WriteFile(t, filepath.Join(source, "a.txt"), "one")
	util.WriteFile(t, filepath.Join(source, "sub", "b.txt"), "two")
	util.WriteFile(t, filepath.Join(target, "c.txt"), "three")

	// Force an update in each direction.
	srcD := filepath.Join(source, "d.txt")
	tgtD := filepath.Join(target, "d.txt")
	util.WriteFile(t, srcD, "new d")
	util.WriteFile(t, tgtD, "old d")
	newer := time.Now().Add(-time.Hour)
	older := newer.Add(-time.Hour)
	util.AssertNoError(t, os.Chtimes(srcD, newer, newer))
	util.AssertNoError(t, os.Chtimes(tgtD, older, older))

	first := NewSession(source, target, Options{})
	util.AssertNoError(t, first.Analyze(context.Background()))
	result, err := first.Execute(context.Background(), nil)
	util.AssertNoError(t, err)
	util.AssertEqual(t, result.Counts.Failed, 0)

	// A completed plan leaves nothing behind: rescan and re-diff is empty.
	second := NewSession(source, target, Options{})
	util.AssertNoError(t, second.Analyze(context.Background()))
	if !second.InSync() {
		t.Errorf("expected trees in sync, plan=%d conflicts=%d",
			len(second.Plan), len(second.Conflicts))
		for _, a := range second.Plan {
			t.Logf("  leftover action: %s %s", a.Kind, a.Path)
		}
	}
}

func TestSession_ConflictRoundTrip(t *testing.T) {
	source := util.CreateTempDir(t)
	target := util.CreateTempDir(t)

	srcPath := filepath.Join(source, "clash.txt")
	tgtPath := filepath.Join(target, "clash.txt")
	util.WriteFile(t, srcPath, "source side")
	util.WriteFile(t, tgtPath, "target side")

	// Same mtime, different content: the one route to a conflict.
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	util.AssertNoError(t, os.Chtimes(srcPath, stamp, stamp))
	util.AssertNoError(t, os.Chtimes(tgtPath, stamp, stamp))

	session := NewSession(source, target, Options{})
	util.AssertNoError(t, session.Analyze(context.Background()))

	util.AssertEqual(t, len(session.Plan), 0)
	util.AssertEqual(t, len(session.Conflicts), 1)

	// Executing with unresolved conflicts is refused.
	if _, err := session.Execute(context.Background(), nil); err == nil {
		t.Fatal("expected error executing with unresolved conflicts")
	}

	util.AssertNoError(t, session.ResolveWith(AutoResolver{Choice: ResolutionSourceWins}))
	util.AssertEqual(t, len(session.Conflicts), 0)
	util.AssertEqual(t, len(session.Plan), 1)

	result, err := session.Execute(context.Background(), nil)
	util.AssertNoError(t, err)
	util.AssertEqual(t, result.Counts.Success, 1)
	util.AssertEqual(t, readFile(t, tgtPath), "source side")
}

func TestSession_KeepBothLeavesBackup(t *testing.T) {
	source := util.CreateTempDir(t)
	target := util.CreateTempDir(t)

	srcPath := filepath.Join(source, "clash.txt")
	tgtPath := filepath.Join(target, "clash.txt")
	util.WriteFile(t, srcPath, "source side")
	util.WriteFile(t, tgtPath, "target side")
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	util.AssertNoError(t, os.Chtimes(srcPath, stamp, stamp))
	util.AssertNoError(t, os.Chtimes(tgtPath, stamp, stamp))

	session := NewSession(source, target, Options{})
	util.AssertNoError(t, session.Analyze(context.Background()))
	util.AssertNoError(t, session.ResolveWith(AutoResolver{Choice: ResolutionKeepBoth}))

	result, err := session.Execute(context.Background(), nil)
	util.AssertNoError(t, err)
	util.AssertEqual(t, result.Counts.Success, 1)

	util.AssertEqual(t, readFile(t, tgtPath), "source side")

	entries, err := os.ReadDir(target)
	util.AssertNoError(t, err)
	util.AssertEqual(t, len(entries), 2)

	var backupFound bool
	for _, entry := range entries {
		if entry.Name() != "clash.txt" {
			backupFound = true
			util.AssertEqual(t, readFile(t, filepath.Join(target, entry.Name())), "target side")
		}
	}
	if !backupFound {
		t.Error("expected a conflict backup file in target")
	}
}

func TestSession_DryRunThenRescanIdentical(t *testing.T) {
	source := util.CreateTempDir(t)
	target := util.CreateTempDir(t)
	util.WriteFile(t, filepath.Join(source, "a.txt"), "alpha")

	before := NewSession(source, target, Options{DryRun: true})
	util.AssertNoError(t, before.Analyze(context.Background()))
	result, err := before.Execute(context.Background(), nil)
	util.AssertNoError(t, err)
	util.AssertEqual(t, result.DryRun, true)
	util.AssertEqual(t, result.Counts.Success, 1)

	after := NewSession(source, target, Options{})
	util.AssertNoError(t, after.Analyze(context.Background()))

	// The dry run changed nothing: the same plan comes back.
	util.AssertEqual(t, len(after.Plan), 1)
	util.AssertEqual(t, after.Plan[0].Kind, KindCopyToTarget)
	util.AssertEqual(t, after.Plan[0].Path, "a.txt")
}

func TestSession_InSyncTrees(t *testing.T) {
	source := util.CreateTempDir(t)
	target := util.CreateTempDir(t)
	util.WriteFile(t, filepath.Join(source, "a.txt"), "same")
	util.WriteFile(t, filepath.Join(target, "a.txt"), "same")

	session := NewSession(source, target, Options{})
	util.AssertNoError(t, session.Analyze(context.Background()))
	util.AssertEqual(t, session.InSync(), true)
}
