package supervisor

import (
	"github.com/Builtbyjb/tide/pkg/lib"
)

// ProcessSnapshot is a point-in-time copy of one supervised child.
type ProcessSnapshot struct {
	ID      string
	Command string
	Pid     int
	Status  lib.ProcessStatus
}

// Status returns snapshots of the current set in start order.
func (s *Supervisor) Status() []ProcessSnapshot {
	s.mu.RLock()
	processes := append([]*process(nil), s.processes...)
	s.mu.RUnlock()

	snapshots := make([]ProcessSnapshot, 0, len(processes))
	for _, p := range processes {
		snapshots = append(snapshots, ProcessSnapshot{
			ID:      p.id,
			Command: p.command,
			Pid:     p.pid,
			Status:  p.lockAndGetStatus(),
		})
	}
	return snapshots
}

func (p *process) lockAndGetStatus() lib.ProcessStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := lib.ProcessStatus{State: p.state, StartTime: p.start}
	if p.exitCode != nil {
		code := *p.exitCode
		st.ExitCode = &code
	}
	if p.end != nil {
		t := *p.end
		st.EndTime = &t
	}
	return st
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
