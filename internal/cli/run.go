package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/klauern/dirsync/internal/config"
	"github.com/klauern/dirsync/internal/logging"
	"github.com/klauern/dirsync/internal/progress"
	"github.com/klauern/dirsync/internal/scan"
	"github.com/klauern/dirsync/internal/sync"
	"github.com/klauern/dirsync/internal/synclog"
	"github.com/klauern/dirsync/internal/ui"
	"github.com/klauern/dirsync/internal/util"
)

// ErrSourceMissing is returned when the source directory does not exist.
// The run aborts before any scan or mutation.
var ErrSourceMissing = errors.New("source directory does not exist")

// runSync is the root command action: scan, diff, resolve, confirm, execute,
// log.
func runSync(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 2 {
		return errors.New("dirsync requires exactly 2 arguments: <source> <target>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cfg.Output.Color == "never" {
		ui.DisableColors()
	}

	sourceRoot := filepath.Clean(args.Get(0))
	targetRoot := filepath.Clean(args.Get(1))

	dryRun := cmd.Bool("dry-run")
	autoResolve := cmd.String("auto-resolve")
	if autoResolve == "" {
		autoResolve = cfg.Sync.AutoResolve
	}
	if autoResolve != "" && autoResolve != "source" && autoResolve != "target" {
		return fmt.Errorf("invalid --auto-resolve value %q: must be 'source' or 'target'", autoResolve)
	}

	workers := int(cmd.Int("workers"))
	if workers <= 0 {
		workers = cfg.Sync.Workers
	}

	// Source must exist before anything else happens.
	info, err := os.Stat(sourceRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, sourceRoot)
		}
		return fmt.Errorf("checking source %q: %w", sourceRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", sourceRoot)
	}

	// Target is created on demand, but never during a dry run.
	if !dryRun {
		if err := os.MkdirAll(targetRoot, 0o750); err != nil {
			return fmt.Errorf("creating target directory %q: %w", targetRoot, err)
		}
	}

	// Phase 1+2: scan both roots and diff. Total file count is unknown up
	// front, so the bar runs in spinner mode.
	scanBar := progress.Simple(-1, "Scanning")
	session := sync.NewSession(sourceRoot, targetRoot, sync.Options{
		DryRun:  dryRun,
		Workers: workers,
		OnScanFile: func(scan.FileRecord) {
			_ = scanBar.Add(1)
		},
	})

	if err := session.Analyze(ctx); err != nil {
		_ = scanBar.Clear()
		return err
	}
	_ = scanBar.Finish()

	displayAnalysis(session)

	if session.InSync() {
		fmt.Println(ui.StatusSuccess("Directories are already synchronized!"))
		return nil
	}

	// Phase 3: conflict resolution.
	if len(session.Conflicts) > 0 {
		resolver, err := chooseResolver(autoResolve, len(session.Conflicts))
		if err != nil {
			return err
		}
		if err := session.ResolveWith(resolver); err != nil {
			return err
		}
	}

	if len(session.Plan) == 0 {
		fmt.Println("No actions to perform.")
		return nil
	}

	// Final gate: the full plan, conflicts included, is known before any
	// action runs.
	if !dryRun && cfg.Sync.Confirm && !cmd.Bool("yes") {
		ok, err := promptConfirm(len(session.Plan))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Synchronization cancelled.")
			return nil
		}
	}

	// Phase 4: execution.
	result, err := executePlan(ctx, session)
	if err != nil {
		return err
	}

	displayResult(result)

	// Phase 5: persist the audit log. Failure here is reported, never
	// rolled back: the sync already happened.
	if !dryRun {
		logPath := cmd.String("log-file")
		if logPath == "" {
			logPath = filepath.Join(cfg.Log.Dir, util.DefaultLogFileName(session.StartedAt()))
		}
		if err := synclog.Write(logPath, synclog.FromResult(result)); err != nil {
			fmt.Println(ui.StatusWarning(fmt.Sprintf("failed to save sync log: %v", err)))
			logging.Warn("sync log write failed", logging.Err(err))
		} else {
			fmt.Printf("Sync log saved to: %s\n", logPath)
		}
	}

	return nil
}

// chooseResolver picks the conflict resolution strategy for this run.
// Headless invocations with conflicts must pass --auto-resolve; the
// alternative is a prompt nobody can answer.
func chooseResolver(autoResolve string, conflictCount int) (sync.Resolver, error) {
	switch autoResolve {
	case "source":
		fmt.Printf("\nAuto-resolving %d conflict(s) (source wins)\n", conflictCount)
		return sync.AutoResolver{Choice: sync.ResolutionSourceWins}, nil
	case "target":
		fmt.Printf("\nAuto-resolving %d conflict(s) (target wins)\n", conflictCount)
		return sync.AutoResolver{Choice: sync.ResolutionTargetWins}, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("%d conflict(s) need resolution but stdin is not a terminal; rerun with --auto-resolve source|target", conflictCount)
	}

	return NewInteractiveResolver(os.Stdin, os.Stdout, conflictCount), nil
}

// executePlan runs the finalized plan with a progress bar and per-failure
// reporting.
func executePlan(ctx context.Context, session *sync.Session) (*sync.Result, error) {
	if session.Opts.DryRun {
		fmt.Println(ui.Bold("\nDRY RUN - No changes will be made"))
		return session.Execute(ctx, nil)
	}

	fmt.Printf("\nExecuting %d sync action(s)...\n", len(session.Plan))
	bar := progress.Simple(int64(len(session.Plan)), "Syncing")

	result, err := session.Execute(ctx, func(ar sync.ActionResult) {
		_ = bar.Add(1)
		if ar.Err != nil {
			_ = bar.Clear()
			fmt.Println(ui.StatusError(fmt.Sprintf("%s: %v", ar.Action.Path, ar.Err)))
		}
	})
	if err != nil {
		return nil, err
	}
	_ = bar.Finish()

	return result, nil
}

// promptConfirm asks for the final go-ahead before a mutating run.
func promptConfirm(actionCount int) (bool, error) {
	fmt.Printf("\nProceed with synchronization of %d file(s)? (y/N): ", actionCount)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	return strings.EqualFold(strings.TrimSpace(response), "y"), nil
}
