package supervisor

import (
	"sync"
	"time"
)

// TerminateAll kills every supervised child and waits for them to be reaped,
// at most for the grace period. Kill failures are reported on the console and
// do not stop the others. With nothing running it does nothing.
func (s *Supervisor) TerminateAll() {
	s.op.Lock()
	defer s.op.Unlock()

	s.terminateAll()
}

func (s *Supervisor) terminateAll() {
	s.mu.Lock()
	processes := s.processes
	s.processes = nil
	s.mu.Unlock()

	if len(processes) == 0 {
		return
	}
	s.console.Header("Shutting down commands")

	var wg sync.WaitGroup
	for _, p := range processes {
		wg.Add(1)
		go func(p *process) {
			defer wg.Done()
			err := s.kill(p)
			if err != nil {
				s.logger.Warn("kill failed", "id", p.id, "command", p.command, "err", err)
			}
			s.console.Outcome(p.command, err)
		}(p)
	}
	wg.Wait()

	s.awaitExit(processes)
	s.console.Success("Shutdown complete!!!")
	s.notify()
}

func (s *Supervisor) kill(p *process) error {
	if p.exited() {
		return nil
	}
	s.logger.Debug("killing process", "id", p.id, "pid", p.pid)
	return killTree(p.cmd.Process)
}

// awaitExit blocks until every process is reaped or the grace period is over.
func (s *Supervisor) awaitExit(processes []*process) {
	timer := time.NewTimer(s.grace)
	defer timer.Stop()

	for _, p := range processes {
		select {
		case <-p.done:
		case <-timer.C:
			for _, rest := range processes {
				if !rest.exited() {
					s.logger.Warn("process still running after grace period", "id", rest.id, "pid", rest.pid, "command", rest.command)
				}
			}
			return
		}
	}
}
