//go:build windows

package supervisor

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// prepare passes the command line to cmd verbatim; the default argument
// quoting would break `cmd /C` strings that carry their own quotes.
func prepare(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine:       strings.Join(cmd.Args, " "),
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

func killTree(proc *os.Process) error {
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
