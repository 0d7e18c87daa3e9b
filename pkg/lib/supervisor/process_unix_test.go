//go:build !windows

package supervisor

import (
	"errors"

	"golang.org/x/sys/unix"
)

// processAlive reports whether pid refers to a live (or unreaped) process.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
