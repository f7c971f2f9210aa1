// Package sync implements two-way directory reconciliation: diffing catalogs
// into an action plan, resolving conflicts, and executing the plan.
package sync

import (
	"time"

	"github.com/klauern/dirsync/internal/scan"
)

// ActionKind identifies a reconciling operation. The vocabulary is closed:
// every consumer switches exhaustively over these kinds.
type ActionKind string

const (
	// KindCopyToTarget copies a source-only file into the target tree.
	KindCopyToTarget ActionKind = "copy_to_target"

	// KindCopyToSource copies a target-only file into the source tree.
	KindCopyToSource ActionKind = "copy_to_source"

	// KindUpdateTarget overwrites the target copy with the newer source copy.
	KindUpdateTarget ActionKind = "update_target"

	// KindUpdateSource overwrites the source copy with the newer target copy.
	KindUpdateSource ActionKind = "update_source"

	// KindDeleteFromTarget removes a file from the target tree. Part of the
	// action vocabulary but never emitted by the differencer.
	KindDeleteFromTarget ActionKind = "delete_from_target"

	// KindDeleteFromSource removes a file from the source tree. Part of the
	// action vocabulary but never emitted by the differencer.
	KindDeleteFromSource ActionKind = "delete_from_source"

	// KindRenameThenCopy renames the existing target file to a backup name,
	// then copies the source version over. Produced by keep-both conflict
	// resolution; both sub-steps must succeed for the action to count as one
	// success.
	KindRenameThenCopy ActionKind = "rename_then_copy"

	// KindConflict marks a file whose direction cannot be inferred. Never
	// executable; it must be resolved into one of the other kinds first.
	KindConflict ActionKind = "conflict"
)

// IsValid returns true if the kind is recognized.
func (k ActionKind) IsValid() bool {
	switch k {
	case KindCopyToTarget, KindCopyToSource, KindUpdateTarget, KindUpdateSource,
		KindDeleteFromTarget, KindDeleteFromSource, KindRenameThenCopy, KindConflict:
		return true
	default:
		return false
	}
}

// Executable returns true if the executor can apply this kind directly.
func (k ActionKind) Executable() bool {
	return k.IsValid() && k != KindConflict
}

// String returns the string representation of the kind.
func (k ActionKind) String() string {
	return string(k)
}

// Description returns a short human-readable description of the kind.
func (k ActionKind) Description() string {
	switch k {
	case KindCopyToTarget:
		return "→ Copy to target"
	case KindCopyToSource:
		return "← Copy to source"
	case KindUpdateTarget:
		return "→ Update target"
	case KindUpdateSource:
		return "← Update source"
	case KindDeleteFromTarget:
		return "→ Delete from target"
	case KindDeleteFromSource:
		return "← Delete from source"
	case KindRenameThenCopy:
		return "→ Back up target, copy source"
	case KindConflict:
		return "! Conflict"
	default:
		return "Unknown action"
	}
}

// Status records the post-execution outcome of an action.
type Status string

const (
	// StatusPending means the action has not been executed.
	StatusPending Status = ""

	// StatusSuccess means the action was fully applied.
	StatusSuccess Status = "success"

	// StatusFailed means the action errored; the filesystem may hold a
	// partial result only for the rename-then-copy compound, whose rename
	// sub-step is not undone.
	StatusFailed Status = "failed"

	// StatusSkipped means the action was never attempted (cancellation).
	StatusSkipped Status = "skipped"
)

// Action is one reconciling operation between the two trees.
//
// Lifecycle: created by the differencer or conflict resolution, consumed
// exactly once by the executor, which is the sole writer of Timestamp and
// Status, then appended to the sync log.
type Action struct {
	// Kind is the operation variant.
	Kind ActionKind

	// Path is the relative path the action reconciles.
	Path string

	// Source is the source-side record, if the path exists there.
	Source *scan.FileRecord

	// Target is the target-side record, if the path exists there.
	Target *scan.FileRecord

	// BackupPath is the relative rename destination for KindRenameThenCopy.
	BackupPath string

	// Timestamp is the completion time, stamped by the executor.
	Timestamp time.Time

	// Status is the execution outcome, stamped by the executor.
	Status Status
}
