package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/klauern/dirsync/internal/logging"
	"github.com/klauern/dirsync/internal/scan"
)

// Options configures one synchronization run.
type Options struct {
	// DryRun previews the plan without mutating either tree.
	DryRun bool

	// Workers is the hash worker pool size for scanning.
	Workers int

	// OnScanFile, if non-nil, is called once per cataloged file.
	OnScanFile func(rec scan.FileRecord)
}

// Session holds the mutable state of a single run as it moves through the
// phases: scan, diff, resolve, execute. A session is not reused; each
// invocation starts fresh so repeated runs can't observe stale state.
type Session struct {
	SourceRoot string
	TargetRoot string
	Opts       Options

	// Source and Target are the catalogs from the scan phase.
	Source scan.Catalog
	Target scan.Catalog

	// Plan holds the executable actions; Conflicts the unresolved ones.
	Plan      []Action
	Conflicts []Action

	// Result is populated by Execute.
	Result *Result

	started time.Time
}

// NewSession creates a session for one run over the given roots.
func NewSession(sourceRoot, targetRoot string, opts Options) *Session {
	return &Session{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Opts:       opts,
		started:    time.Now(),
	}
}

// Analyze scans both roots and computes the plan and conflict list.
func (s *Session) Analyze(ctx context.Context) error {
	logging.Info("scanning source directory", logging.Root(s.SourceRoot))
	source, err := scan.Scan(ctx, s.SourceRoot, scan.Options{
		Workers: s.Opts.Workers,
		OnFile:  s.Opts.OnScanFile,
	})
	if err != nil {
		return fmt.Errorf("scanning source %q: %w", s.SourceRoot, err)
	}

	logging.Info("scanning target directory", logging.Root(s.TargetRoot))
	target, err := scan.Scan(ctx, s.TargetRoot, scan.Options{
		Workers: s.Opts.Workers,
		OnFile:  s.Opts.OnScanFile,
	})
	if err != nil {
		return fmt.Errorf("scanning target %q: %w", s.TargetRoot, err)
	}

	s.Source = source
	s.Target = target
	s.Plan, s.Conflicts = Diff(source, target)

	return nil
}

// InSync returns true when analysis found nothing to reconcile.
func (s *Session) InSync() bool {
	return len(s.Plan) == 0 && len(s.Conflicts) == 0
}

// ResolveWith resolves the session's conflicts and appends the resulting
// actions to the plan. The conflict list is cleared; skipped conflicts are
// simply dropped from this run.
func (s *Session) ResolveWith(resolver Resolver) error {
	if len(s.Conflicts) == 0 {
		return nil
	}

	resolved, err := ResolveConflicts(s.Conflicts, resolver, nil)
	if err != nil {
		return err
	}

	s.Plan = append(s.Plan, resolved...)
	s.Conflicts = nil
	return nil
}

// Execute applies the finalized plan. It must not be called while conflicts
// remain unresolved; partial plans are never applied.
func (s *Session) Execute(ctx context.Context, onAction func(ActionResult)) (*Result, error) {
	if len(s.Conflicts) > 0 {
		return nil, fmt.Errorf("%d unresolved conflicts remain; resolve or skip them before executing", len(s.Conflicts))
	}

	executor := NewExecutor(s.SourceRoot, s.TargetRoot)
	executor.OnAction = onAction
	s.Result = executor.Execute(ctx, s.Plan, s.Opts.DryRun)
	return s.Result, nil
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.started
}
