// Package runloop drives a Supervisor until the context is cancelled,
// either once (one-shot) or restarting the command set whenever the watched
// tree changes (watch mode).
package runloop

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Builtbyjb/tide/pkg/lib"
	"github.com/Builtbyjb/tide/pkg/lib/watcher"
)

// DefaultInterval is the pause between two scans in watch mode.
const DefaultInterval = 100 * time.Millisecond

// ErrNoCommands is returned when Run is given an empty command list.
var ErrNoCommands = errors.New("no commands to run")

// Supervisor is the part of *supervisor.Supervisor the loop drives.
type Supervisor interface {
	ReplaceAll(commands []string) error
	TerminateAll()
}

// Options configures Run.
type Options struct {
	Commands   []string
	Supervisor Supervisor

	// Watch enables polling Root and restarting on changes.
	Watch    bool
	Root     string
	Rules    watcher.Rules
	Interval time.Duration
	// OnModified is passed to the scanner; see watcher.Scanner.
	OnModified func(path string)

	Logger *log.Logger
}

// Run starts the command set and blocks until ctx is done, then terminates
// every child and returns nil. A scan or spawn error also terminates the
// children and is returned.
func Run(ctx context.Context, opts Options) error {
	if len(opts.Commands) == 0 {
		return ErrNoCommands
	}
	if opts.Logger == nil {
		opts.Logger = lib.DiscardLogger("runloop")
	}

	var err error
	if opts.Watch {
		err = watch(ctx, opts)
	} else {
		err = oneShot(ctx, opts)
	}

	opts.Supervisor.TerminateAll()
	return err
}

func oneShot(ctx context.Context, opts Options) error {
	if err := opts.Supervisor.ReplaceAll(opts.Commands); err != nil {
		return err
	}
	<-ctx.Done()
	opts.Logger.Debug("shutdown requested")
	return nil
}

func watch(ctx context.Context, opts Options) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	scanner := watcher.Scanner{
		Rules:      opts.Rules,
		Logger:     opts.Logger,
		OnModified: opts.OnModified,
	}
	tracked := watcher.Tracked{}

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			opts.Logger.Debug("shutdown requested", "tracked", len(tracked))
			return nil
		case <-timer.C:
		}

		changed, err := scanner.ScanContext(ctx, opts.Root, tracked)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				opts.Logger.Debug("shutdown requested during scan")
				return nil
			}
			return err
		}
		if changed && ctx.Err() == nil {
			opts.Logger.Debug("change detected, restarting", "tracked", len(tracked))
			if err := opts.Supervisor.ReplaceAll(opts.Commands); err != nil {
				return err
			}
		}
		timer.Reset(interval)
	}
}
