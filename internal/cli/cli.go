// Package cli provides the command-line interface for dirsync.
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/klauern/dirsync/internal/logging"
	"github.com/klauern/dirsync/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:      "dirsync",
		Usage:     "Two-way directory synchronization with conflict resolution",
		UsageText: "dirsync [options] <source> <target>",
		Version:   Version,
		Description: `Compare two directory trees, derive a minimal reconciliation plan,
   resolve conflicting changes, and apply the plan with a per-run audit log.

   Examples:
     dirsync ~/docs /mnt/backup/docs
     dirsync --dry-run ./a ./b
     dirsync --auto-resolve source ./a ./b`,
		ArgsUsage: "<source> <target>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview actions without modifying either tree",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Override the default timestamped sync log path",
			},
			&cli.StringFlag{
				Name:  "auto-resolve",
				Usage: "Resolve all conflicts without prompting: 'source' or 'target'",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the final confirmation prompt",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Hash worker pool size (default: one per CPU)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			return ctx, configureLogging(cmd)
		},
		Action: runSync,
	}
	return app.Run(ctx, args)
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}
