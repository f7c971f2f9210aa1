package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/klauern/dirsync/internal/logging"
)

// Counts aggregates per-action outcomes for one execution.
type Counts struct {
	Success int
	Failed  int
	Skipped int
}

// ActionResult pairs an executed (or attempted) action with its error.
type ActionResult struct {
	Action Action
	Err    error
}

// Result is the complete outcome of executing a plan.
type Result struct {
	// SourceRoot and TargetRoot are the trees the plan ran against.
	SourceRoot string
	TargetRoot string

	// DryRun indicates no filesystem mutation occurred.
	DryRun bool

	// StartedAt is when execution began.
	StartedAt time.Time

	// Actions holds every attempted action in execution order.
	Actions []ActionResult

	// Counts aggregates outcomes.
	Counts Counts
}

// Executed returns the successfully applied actions, stamped with their
// completion time. These are what the sync log persists.
func (r *Result) Executed() []Action {
	var executed []Action
	for _, ar := range r.Actions {
		if ar.Action.Status == StatusSuccess {
			executed = append(executed, ar.Action)
		}
	}
	return executed
}

// Failures returns the actions that errored, with their causes.
func (r *Result) Failures() []ActionResult {
	var failures []ActionResult
	for _, ar := range r.Actions {
		if ar.Action.Status == StatusFailed {
			failures = append(failures, ar)
		}
	}
	return failures
}

// Success returns true if no action failed.
func (r *Result) Success() bool {
	return r.Counts.Failed == 0
}

// Executor applies an action plan against the two trees. It is the sole
// writer of action Status and Timestamp fields.
type Executor struct {
	sourceRoot string
	targetRoot string

	// now is swappable for tests.
	now func() time.Time

	// OnAction, if non-nil, is called after each action is attempted.
	// Useful for progress display.
	OnAction func(ActionResult)
}

// NewExecutor creates an executor for the given roots.
func NewExecutor(sourceRoot, targetRoot string) *Executor {
	return &Executor{
		sourceRoot: sourceRoot,
		targetRoot: targetRoot,
		now:        time.Now,
	}
}

// Execute applies actions in order and returns the aggregate result.
//
// With dryRun set, nothing is touched and the success count reports plan
// validity (len of the plan), not completed work.
//
// In a real run each action is isolated: a failure is counted and reported
// but never aborts the batch. Cancelling ctx stops issuing new actions;
// the remainder are counted as skipped and the counts so far are returned.
func (e *Executor) Execute(ctx context.Context, actions []Action, dryRun bool) *Result {
	defer logging.Timer("execute")()

	result := &Result{
		SourceRoot: e.sourceRoot,
		TargetRoot: e.targetRoot,
		DryRun:     dryRun,
		StartedAt:  e.now(),
	}

	if dryRun {
		result.Counts.Success = len(actions)
		logging.Debug("dry run, no actions executed",
			logging.Count(len(actions)),
		)
		return result
	}

	for i, action := range actions {
		if ctx.Err() != nil {
			logging.Warn("execution cancelled",
				logging.Count(len(actions)-i),
			)
			for _, rest := range actions[i:] {
				rest.Status = StatusSkipped
				result.Actions = append(result.Actions, ActionResult{Action: rest})
				result.Counts.Skipped++
			}
			break
		}

		err := e.apply(action)
		if err != nil {
			action.Status = StatusFailed
			result.Counts.Failed++
			logging.Warn("action failed",
				logging.Path(action.Path),
				logging.Action(string(action.Kind)),
				logging.Err(err),
			)
		} else {
			action.Status = StatusSuccess
			action.Timestamp = e.now()
			result.Counts.Success++
		}

		ar := ActionResult{Action: action, Err: err}
		result.Actions = append(result.Actions, ar)
		if e.OnAction != nil {
			e.OnAction(ar)
		}
	}

	return result
}

// apply performs one action. For the rename-then-copy compound, the rename
// must succeed before the copy is attempted; a rename failure stops the
// compound without touching the destination.
func (e *Executor) apply(action Action) error {
	sourcePath := filepath.Join(e.sourceRoot, filepath.FromSlash(action.Path))
	targetPath := filepath.Join(e.targetRoot, filepath.FromSlash(action.Path))

	switch action.Kind {
	case KindCopyToTarget, KindUpdateTarget:
		return copyFile(sourcePath, targetPath)

	case KindCopyToSource, KindUpdateSource:
		return copyFile(targetPath, sourcePath)

	case KindDeleteFromTarget:
		return removeFile(targetPath)

	case KindDeleteFromSource:
		return removeFile(sourcePath)

	case KindRenameThenCopy:
		backupPath := filepath.Join(e.targetRoot, filepath.FromSlash(action.BackupPath))
		if err := renameNoClobber(targetPath, backupPath); err != nil {
			return err
		}
		return copyFile(sourcePath, targetPath)

	case KindConflict:
		return fmt.Errorf("unresolved conflict for %q reached the executor", action.Path)

	default:
		return fmt.Errorf("unknown action kind %q for %q", action.Kind, action.Path)
	}
}
