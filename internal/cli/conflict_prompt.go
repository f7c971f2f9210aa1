package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauern/dirsync/internal/sync"
	"github.com/klauern/dirsync/internal/ui"
)

// InteractiveResolver prompts the user for each conflict on the given
// reader/writer pair. It implements sync.Resolver. Invalid input re-prompts
// without consuming the conflict; there is no implicit default.
type InteractiveResolver struct {
	reader *bufio.Reader
	out    io.Writer

	total int
	seen  int
}

// NewInteractiveResolver creates a resolver prompting on in/out for the
// given number of conflicts.
func NewInteractiveResolver(in io.Reader, out io.Writer, total int) *InteractiveResolver {
	return &InteractiveResolver{
		reader: bufio.NewReader(in),
		out:    out,
		total:  total,
	}
}

// Resolve presents both sides of the conflict and reads a choice.
func (ir *InteractiveResolver) Resolve(conflict sync.Action) (sync.Resolution, error) {
	ir.seen++
	if ir.seen == 1 {
		fmt.Fprintf(ir.out, "\n%s\n", ui.RenderTitle(fmt.Sprintf("=== RESOLVING %d CONFLICT(S) ===", ir.total)))
	}

	fmt.Fprintf(ir.out, "\nConflict %d/%d: %s\n", ir.seen, ir.total, conflict.Path)
	fmt.Fprintf(ir.out, "  Source: %s\n", describeSide(conflict.Source))
	fmt.Fprintf(ir.out, "  Target: %s\n", describeSide(conflict.Target))

	fmt.Fprintln(ir.out, "\nHow would you like to resolve this conflict?")
	fmt.Fprintln(ir.out, "  1. Source wins (overwrite target)")
	fmt.Fprintln(ir.out, "  2. Target wins (overwrite source)")
	fmt.Fprintln(ir.out, "  3. Keep both (rename target to a backup, then copy source)")
	fmt.Fprintln(ir.out, "  4. Skip this file")
	fmt.Fprint(ir.out, "\nEnter choice [1-4]: ")

	for {
		response, err := ir.reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		choice, err := strconv.Atoi(strings.TrimSpace(response))
		if err != nil || choice < 1 || choice > 4 {
			fmt.Fprint(ir.out, "Invalid choice. Enter 1-4: ")
			continue
		}

		switch choice {
		case 1:
			return sync.ResolutionSourceWins, nil
		case 2:
			return sync.ResolutionTargetWins, nil
		case 3:
			return sync.ResolutionKeepBoth, nil
		default:
			fmt.Fprintln(ir.out, "Skipping this conflict")
			return sync.ResolutionSkip, nil
		}
	}
}
