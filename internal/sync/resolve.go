package sync

import (
	"fmt"
	"time"

	"github.com/klauern/dirsync/internal/logging"
)

// Resolution represents how a single conflict should be resolved.
type Resolution string

const (
	// ResolutionSourceWins overwrites the target with the source version.
	ResolutionSourceWins Resolution = "source"

	// ResolutionTargetWins overwrites the source with the target version.
	ResolutionTargetWins Resolution = "target"

	// ResolutionKeepBoth renames the target copy to a backup name and then
	// copies the source version over.
	ResolutionKeepBoth Resolution = "keep-both"

	// ResolutionSkip leaves the conflict unreconciled for this run.
	ResolutionSkip Resolution = "skip"
)

// IsValid returns true if the resolution is recognized.
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionSourceWins, ResolutionTargetWins, ResolutionKeepBoth, ResolutionSkip:
		return true
	default:
		return false
	}
}

// Resolver decides the resolution for each conflict. Implementations must
// not touch the filesystem; they only turn conflicts into executable actions.
type Resolver interface {
	Resolve(conflict Action) (Resolution, error)
}

// AutoResolver resolves every conflict with a fixed choice and never prompts.
type AutoResolver struct {
	Choice Resolution
}

// Resolve returns the fixed choice for any conflict.
func (a AutoResolver) Resolve(Action) (Resolution, error) {
	return a.Choice, nil
}

// ScriptedResolver replays a per-path script of resolutions. Paths missing
// from the script are skipped. Intended for tests and headless callers that
// computed decisions up front.
type ScriptedResolver struct {
	Choices map[string]Resolution
}

// Resolve looks up the scripted choice for the conflict's path.
func (s ScriptedResolver) Resolve(conflict Action) (Resolution, error) {
	choice, ok := s.Choices[conflict.Path]
	if !ok {
		return ResolutionSkip, nil
	}
	return choice, nil
}

// ResolveConflicts turns conflicts into executable actions using the given
// resolver. Skipped conflicts produce nothing. The now func supplies the
// backup-name timestamp for keep-both resolutions; nil means time.Now.
func ResolveConflicts(conflicts []Action, resolver Resolver, now func() time.Time) ([]Action, error) {
	if now == nil {
		now = time.Now
	}

	var resolved []Action
	for _, conflict := range conflicts {
		choice, err := resolver.Resolve(conflict)
		if err != nil {
			return nil, fmt.Errorf("resolving conflict for %q: %w", conflict.Path, err)
		}
		if !choice.IsValid() {
			return nil, fmt.Errorf("invalid resolution %q for %q", choice, conflict.Path)
		}

		logging.Debug("conflict resolved",
			logging.Path(conflict.Path),
			logging.Operation("resolve"),
			logging.Action(string(choice)),
		)

		switch choice {
		case ResolutionSourceWins:
			resolved = append(resolved, withKind(conflict, KindUpdateTarget))
		case ResolutionTargetWins:
			resolved = append(resolved, withKind(conflict, KindUpdateSource))
		case ResolutionKeepBoth:
			action := withKind(conflict, KindRenameThenCopy)
			action.BackupPath = BackupName(conflict.Path, now())
			resolved = append(resolved, action)
		case ResolutionSkip:
			// nothing emitted for this conflict
		}
	}

	return resolved, nil
}

// BackupName computes the rename destination used by keep-both resolution.
// Uniqueness rests on the per-catalog unique-path invariant, not sub-second
// timing; the executor refuses to overwrite an existing backup.
func BackupName(path string, t time.Time) string {
	return fmt.Sprintf("%s.conflict_backup_%d", path, t.Unix())
}

func withKind(conflict Action, kind ActionKind) Action {
	action := conflict
	action.Kind = kind
	return action
}
