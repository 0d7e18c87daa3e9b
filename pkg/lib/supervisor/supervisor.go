// Package supervisor owns the child processes of the active command set.
//
// A Supervisor replaces its whole set at once: the previous generation is
// killed and awaited (bounded by the grace period) before any command of the
// next one is spawned, so two generations never overlap and stale output
// cannot interleave with new output under the same label.
package supervisor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Builtbyjb/tide/pkg/lib"
	"github.com/Builtbyjb/tide/pkg/lib/output"
)

// DefaultGracePeriod bounds how long TerminateAll waits for killed children.
const DefaultGracePeriod = time.Second

// Shell is the interpreter a command string is handed to.
type Shell struct {
	Name string
	Flag string
}

// shells maps GOOS to the shell used there. Anything not listed uses sh.
var shells = map[string]Shell{
	"windows": {Name: "cmd", Flag: "/C"},
}

// DefaultShell returns the shell for the running platform.
func DefaultShell() Shell {
	if sh, ok := shells[runtime.GOOS]; ok {
		return sh
	}
	return Shell{Name: "sh", Flag: "-c"}
}

// Options configures a Supervisor. Zero values select defaults.
type Options struct {
	Console     *output.Console
	Logger      *log.Logger
	GracePeriod time.Duration
	Shell       Shell
	// Dir is the working directory of children; empty means the current one.
	Dir string
}

// SpawnError reports a command whose process could not be created.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start command %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Supervisor manages the processes started for one command set.
type Supervisor struct {
	console *output.Console
	logger  *log.Logger
	grace   time.Duration
	shell   Shell
	dir     string

	// op serializes ReplaceAll and TerminateAll.
	op sync.Mutex

	mu        sync.RWMutex
	processes []*process

	changes *output.Broadcaster[struct{}]
}

type process struct {
	id      string
	command string
	cmd     *exec.Cmd
	pid     int
	// done is closed once the child has been reaped.
	done chan struct{}

	// status fields
	mu       sync.RWMutex
	state    lib.ProcessState
	exitCode *int
	start    time.Time
	end      *time.Time
}

// New creates a Supervisor with no running processes.
func New(opts Options) *Supervisor {
	if opts.Console == nil {
		opts.Console = output.NewConsole(os.Stdout)
	}
	if opts.Logger == nil {
		opts.Logger = lib.DiscardLogger("supervisor")
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.Shell.Name == "" {
		opts.Shell = DefaultShell()
	}

	return &Supervisor{
		console: opts.Console,
		logger:  opts.Logger,
		grace:   opts.GracePeriod,
		shell:   opts.Shell,
		dir:     opts.Dir,
		changes: output.NewBroadcaster[struct{}](opts.Logger),
	}
}

// Subscribe returns a channel that receives a value whenever a process is
// spawned, exits or is terminated. Only the latest notification is kept.
func (s *Supervisor) Subscribe() (chan struct{}, error) {
	return s.changes.Subscribe()
}

// Unsubscribe releases a channel obtained from Subscribe.
func (s *Supervisor) Unsubscribe(ch chan struct{}) {
	s.changes.Unsubscribe(ch)
}

// Close terminates every child and closes all subscriptions.
func (s *Supervisor) Close() {
	s.TerminateAll()
	s.changes.Stop()
}

func (s *Supervisor) notify() {
	s.changes.Publish(struct{}{})
}
