//go:build !windows

package supervisor

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// prepare puts the child in a new process group so the shell and everything
// it starts can be killed as a unit.
func prepare(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree sends SIGKILL to the process group led by proc. A group that no
// longer exists is not an error.
func killTree(proc *os.Process) error {
	err := unix.Kill(-proc.Pid, unix.SIGKILL)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.ESRCH) {
		return err
	}
	// The group is gone; the leader may still be an unreaped zombie.
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
