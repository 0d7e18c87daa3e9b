package supervisor

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/Builtbyjb/tide/pkg/lib"
	"github.com/Builtbyjb/tide/pkg/lib/output"
)

// ReplaceAll terminates the current set and then starts commands in order.
//
// A spawn failure aborts the rest of the batch and is returned as a
// *SpawnError. Commands spawned before the failure stay supervised and are
// killed by the next TerminateAll.
func (s *Supervisor) ReplaceAll(commands []string) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.terminateAll()

	s.console.Header("Starting up commands")
	defer s.notify()
	for _, command := range commands {
		p, err := s.spawn(command)
		if err != nil {
			s.logger.Error("spawn failed", "command", command, "err", err)
			return err
		}
		s.mu.Lock()
		s.processes = append(s.processes, p)
		s.mu.Unlock()
	}
	return nil
}

func (s *Supervisor) spawn(command string) (*process, error) {
	if command == "" {
		return nil, &SpawnError{Command: command, Err: errors.New("command is empty")}
	}

	cmd := exec.Command(s.shell.Name, s.shell.Flag, command)
	cmd.Dir = s.dir
	prepare(cmd)

	// cmd.Stdin is left nil, so it will use the null device
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	p := &process{
		id:      lib.NewID(),
		command: command,
		cmd:     cmd,
		done:    make(chan struct{}),
		state:   lib.ProcessStateRunning,
	}

	s.logger.Debug("starting process", "id", p.id, "command", command)
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}
	p.pid = cmd.Process.Pid
	p.start = time.Now()

	var drains sync.WaitGroup
	drains.Add(2)
	go s.drain(p, stdout, lib.StreamStdout, &drains)
	go s.drain(p, stderr, lib.StreamStderr, &drains)

	// Waiter
	go s.wait(p, &drains)

	return p, nil
}

func (s *Supervisor) drain(p *process, r io.Reader, stream lib.Stream, drains *sync.WaitGroup) {
	defer drains.Done()
	if err := output.Drain(r, p.command, stream, s.console); err != nil {
		s.logger.Warn("reading output failed", "id", p.id, "stream", stream, "err", err)
		s.console.Error(fmt.Errorf("%s output of %q stopped: %w", stream, p.command, err))
	}
}

// wait reaps the child once both streams hit EOF. Wait must not run earlier:
// it closes the pipes and would cut off buffered output.
func (s *Supervisor) wait(p *process, drains *sync.WaitGroup) {
	drains.Wait()
	err := p.cmd.Wait()

	p.mu.Lock()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			p.exitCode = &code
		}
	} else {
		code := 0
		p.exitCode = &code
	}
	now := time.Now()
	p.end = &now
	p.state = lib.ProcessStateStopped
	p.mu.Unlock()

	if err != nil {
		s.logger.Debug("process finished", "id", p.id, "command", p.command, "err", err)
	} else {
		s.logger.Debug("process finished", "id", p.id, "command", p.command)
	}

	close(p.done)
	s.notify()
}
