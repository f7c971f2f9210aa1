package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/klauern/dirsync/internal/scan"
	"github.com/klauern/dirsync/internal/sync"
	"github.com/klauern/dirsync/internal/util"
)

func promptConflict(path string) sync.Action {
	stamp := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	return sync.Action{
		Kind:   sync.KindConflict,
		Path:   path,
		Source: &scan.FileRecord{Size: 1024, ModTime: stamp},
		Target: &scan.FileRecord{Size: 2048, ModTime: stamp},
	}
}

func TestInteractiveResolver_Choices(t *testing.T) {
	tests := []struct {
		input string
		want  sync.Resolution
	}{
		{"1\n", sync.ResolutionSourceWins},
		{"2\n", sync.ResolutionTargetWins},
		{"3\n", sync.ResolutionKeepBoth},
		{"4\n", sync.ResolutionSkip},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			resolver := NewInteractiveResolver(strings.NewReader(tt.input), &out, 1)

			got, err := resolver.Resolve(promptConflict("a.txt"))
			util.AssertNoError(t, err)
			util.AssertEqual(t, got, tt.want)
		})
	}
}

func TestInteractiveResolver_InvalidInputReprompts(t *testing.T) {
	// Garbage, out-of-range, then a valid choice. The conflict must not be
	// consumed by invalid input.
	var out bytes.Buffer
	resolver := NewInteractiveResolver(strings.NewReader("x\n9\n\n2\n"), &out, 1)

	got, err := resolver.Resolve(promptConflict("a.txt"))
	util.AssertNoError(t, err)
	util.AssertEqual(t, got, sync.ResolutionTargetWins)

	if !strings.Contains(out.String(), "Invalid choice") {
		t.Error("expected a re-prompt message for invalid input")
	}
}

func TestInteractiveResolver_ShowsBothSides(t *testing.T) {
	var out bytes.Buffer
	resolver := NewInteractiveResolver(strings.NewReader("4\n"), &out, 2)

	_, err := resolver.Resolve(promptConflict("docs/readme.md"))
	util.AssertNoError(t, err)

	display := out.String()
	if !strings.Contains(display, "docs/readme.md") {
		t.Error("prompt should name the conflicting path")
	}
	if !strings.Contains(display, "Conflict 1/2") {
		t.Error("prompt should show conflict position")
	}
	if !strings.Contains(display, "Source:") || !strings.Contains(display, "Target:") {
		t.Error("prompt should describe both sides")
	}
}

func TestInteractiveResolver_EOF(t *testing.T) {
	var out bytes.Buffer
	resolver := NewInteractiveResolver(strings.NewReader(""), &out, 1)

	if _, err := resolver.Resolve(promptConflict("a.txt")); err == nil {
		t.Fatal("expected error when input ends before a choice")
	}
}

func TestImplementsResolver(t *testing.T) {
	var _ sync.Resolver = (*InteractiveResolver)(nil)
}
