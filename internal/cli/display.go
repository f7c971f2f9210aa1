package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/klauern/dirsync/internal/scan"
	"github.com/klauern/dirsync/internal/sync"
	"github.com/klauern/dirsync/internal/ui"
)

// previewLimit caps how many planned actions the analysis shows in full.
const previewLimit = 10

// displayAnalysis prints per-kind counts, a short action preview, and the
// conflict list with both sides' metadata.
func displayAnalysis(session *sync.Session) {
	if session.InSync() {
		return
	}

	fmt.Println(ui.RenderTitle("\n=== SYNC ANALYSIS ==="))

	counts := make(map[sync.ActionKind]int)
	for _, action := range session.Plan {
		counts[action.Kind]++
	}
	// Fixed order keeps repeated runs comparable.
	for _, kind := range []sync.ActionKind{
		sync.KindCopyToTarget, sync.KindCopyToSource,
		sync.KindUpdateTarget, sync.KindUpdateSource,
		sync.KindDeleteFromTarget, sync.KindDeleteFromSource,
		sync.KindRenameThenCopy,
	} {
		if n := counts[kind]; n > 0 {
			fmt.Printf("%s: %d file(s)\n", kind.Description(), n)
		}
	}
	if len(session.Conflicts) > 0 {
		fmt.Println(ui.Styles.Conflict.Render(fmt.Sprintf("Conflicts: %d file(s)", len(session.Conflicts))))
	}
	fmt.Printf("\nTotal changes: %d file(s)\n", len(session.Plan))

	if len(session.Plan) > 0 {
		fmt.Println(ui.Styles.Section.Render("=== PLANNED ACTIONS ==="))
		for i, action := range session.Plan {
			if i == previewLimit {
				fmt.Println(ui.Dim(fmt.Sprintf("... and %d more action(s)", len(session.Plan)-previewLimit)))
				break
			}
			fmt.Printf("%d. %s: %s\n", i+1, action.Kind.Description(), action.Path)
		}
	}

	if len(session.Conflicts) > 0 {
		fmt.Println(ui.Styles.Section.Render("=== CONFLICTS (manual resolution required) ==="))
		fmt.Println(ui.Styles.TableHead.Render(fmt.Sprintf("%-40s %-22s %-22s", "PATH", "SOURCE", "TARGET")))
		for _, conflict := range session.Conflicts {
			fmt.Printf("%-40s %-22s %-22s\n",
				truncate(conflict.Path, 40),
				describeSide(conflict.Source),
				describeSide(conflict.Target),
			)
		}
	}
}

// displayResult prints the aggregate outcome of an execution.
func displayResult(result *sync.Result) {
	if result.DryRun {
		fmt.Printf("\nDry run complete: %d action(s) previewed, nothing modified.\n", result.Counts.Success)
		return
	}

	fmt.Println(ui.RenderTitle("\nSync complete!"))
	fmt.Printf("  %s %d\n", ui.Success("Success:"), result.Counts.Success)
	if result.Counts.Failed > 0 {
		fmt.Printf("  %s  %d\n", ui.Error("Failed:"), result.Counts.Failed)
	} else {
		fmt.Printf("  Failed:  %d\n", result.Counts.Failed)
	}
	if result.Counts.Skipped > 0 {
		fmt.Printf("  %s %d\n", ui.Dim("Skipped:"), result.Counts.Skipped)
	}

	if failures := result.Failures(); len(failures) > 0 {
		fmt.Println(ui.Styles.Section.Render("Errors:"))
		for _, f := range failures {
			fmt.Println(ui.StatusError(fmt.Sprintf("%s: %v", f.Action.Path, f.Err)))
		}
	}
}

// describeSide formats one side of a conflict for display.
func describeSide(rec *scan.FileRecord) string {
	if rec == nil {
		return "(absent)"
	}
	return fmt.Sprintf("%s, %s", humanize.Bytes(uint64(rec.Size)), rec.ModTime.Format(time.DateTime))
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
