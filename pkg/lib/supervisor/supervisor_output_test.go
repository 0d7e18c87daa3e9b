package supervisor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Builtbyjb/tide/pkg/lib/output"
)

// outputLines returns the indented lines printed under label, in order.
func outputLines(out, label string) []string {
	var lines []string
	current := ""
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "\t") {
			if current == label {
				lines = append(lines, strings.TrimPrefix(line, "\t"))
			}
			continue
		}
		current = strings.TrimSuffix(line, ":")
	}
	return lines
}

func TestOutput_LinesKeepStreamOrder(t *testing.T) {
	s, out := newTestSupervisor(t, time.Second)

	command := "for i in 1 2 3 4 5; do echo $i; sleep 0.03; done"
	if err := s.ReplaceAll([]string{command}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	waitStopped(t, s, 3*time.Second)

	got := outputLines(out.String(), command)
	want := []string{"1", "2", "3", "4", "5"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("lines mismatch: got=%v want=%v", got, want)
	}
}

func TestOutput_AllLinesFlushedBeforeReap(t *testing.T) {
	s, out := newTestSupervisor(t, time.Second)

	// Print 100 lines rapidly
	command := "i=1; while [ $i -le 100 ]; do echo $i; i=$((i+1)); done"
	if err := s.ReplaceAll([]string{command}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	waitStopped(t, s, 3*time.Second)

	got := outputLines(out.String(), command)
	if len(got) != 100 {
		t.Fatalf("expected 100 lines, got %d", len(got))
	}
	if got[99] != "100" {
		t.Fatalf("unexpected last line %q", got[99])
	}
}

func TestOutput_ConcurrentCommandsAreLabeled(t *testing.T) {
	s, out := newTestSupervisor(t, time.Second)

	commands := []string{
		"for i in 1 2 3; do echo a$i; sleep 0.01; done",
		"for i in 1 2 3; do echo b$i; sleep 0.01; done",
	}
	if err := s.ReplaceAll(commands); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	waitStopped(t, s, 3*time.Second)

	text := out.String()
	for i, prefix := range []string{"a", "b"} {
		got := outputLines(text, commands[i])
		want := []string{prefix + "1", prefix + "2", prefix + "3"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("command %d: got=%v want=%v\n%s", i, got, want, text)
		}
	}
}

func TestOutput_NoOutputProducesNoLabel(t *testing.T) {
	s, out := newTestSupervisor(t, time.Second)

	if err := s.ReplaceAll([]string{":"}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	waitStopped(t, s, 3*time.Second)

	if got := out.String(); got != "Starting up commands\n" {
		t.Fatalf("expected only the start header, got %q", got)
	}
}

func TestOutput_LongLineDoesNotStopStream(t *testing.T) {
	s, out := newTestSupervisor(t, time.Second)

	command := fmt.Sprintf("head -c %d /dev/zero | tr '\\000' x; echo; echo after", output.MaxLineSize+5)
	if err := s.ReplaceAll([]string{command}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	waitStopped(t, s, 5*time.Second)

	got := outputLines(out.String(), command)
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got))
	}
	if len(got[0]) != output.MaxLineSize || got[1] != "xxxxx" || got[2] != "after" {
		t.Fatalf("unexpected lines: len=%d %q %q", len(got[0]), got[1], got[2])
	}
}
