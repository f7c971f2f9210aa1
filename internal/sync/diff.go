package sync

import (
	"sort"

	"github.com/klauern/dirsync/internal/logging"
	"github.com/klauern/dirsync/internal/scan"
)

// Diff compares two catalogs and returns the action plan and the conflicts
// needing resolution, both sorted by relative path so repeated invocations
// display identically.
//
// Classification per path:
//   - only in source: copy to target
//   - only in target: copy to source
//   - both, equal digests: no action, even if timestamps differ
//   - both, differing digests: the newer side wins; equal timestamps with
//     differing digests is a conflict, the one case where direction is never
//     guessed
//
// An empty digest (unreadable file) never equals anything, including another
// empty digest, so hash failures always force an action or a conflict.
func Diff(source, target scan.Catalog) (actions []Action, conflicts []Action) {
	defer logging.Timer("diff")()

	paths := unionPaths(source, target)

	for _, path := range paths {
		srcRec, inSource := source[path]
		tgtRec, inTarget := target[path]

		switch {
		case inSource && !inTarget:
			actions = append(actions, Action{
				Kind:   KindCopyToTarget,
				Path:   path,
				Source: recPtr(srcRec),
			})

		case inTarget && !inSource:
			actions = append(actions, Action{
				Kind:   KindCopyToSource,
				Path:   path,
				Target: recPtr(tgtRec),
			})

		default:
			if digestsEqual(srcRec, tgtRec) {
				continue
			}
			action := Action{
				Path:   path,
				Source: recPtr(srcRec),
				Target: recPtr(tgtRec),
			}
			switch {
			case srcRec.ModTime.After(tgtRec.ModTime):
				action.Kind = KindUpdateTarget
				actions = append(actions, action)
			case tgtRec.ModTime.After(srcRec.ModTime):
				action.Kind = KindUpdateSource
				actions = append(actions, action)
			default:
				action.Kind = KindConflict
				conflicts = append(conflicts, action)
			}
		}
	}

	logging.Debug("diff complete",
		logging.Operation("diff"),
		logging.Count(len(actions)),
	)

	return actions, conflicts
}

// digestsEqual reports whether both records carry the same non-empty digest.
// The empty sentinel marks an unreadable file and is treated as mismatched
// against everything.
func digestsEqual(a, b scan.FileRecord) bool {
	return a.Digest != "" && a.Digest == b.Digest
}

// unionPaths returns the sorted union of relative paths across both catalogs.
func unionPaths(a, b scan.Catalog) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for p := range a {
		seen[p] = struct{}{}
	}
	for p := range b {
		seen[p] = struct{}{}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func recPtr(rec scan.FileRecord) *scan.FileRecord {
	return &rec
}
