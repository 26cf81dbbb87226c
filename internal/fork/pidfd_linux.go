//go:build linux

package fork

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// openPidfd obtains a kernel process descriptor for a direct, not yet
// reaped child. Under that condition the pid cannot have been recycled, so
// the descriptor is bound to the exact process. Returns -1 on kernels
// without pidfd support.
func openPidfd(pid int) int {
	fd, err := unix.PidfdOpen(pid, 0)
	if err != nil {
		return -1
	}
	unix.CloseOnExec(fd)
	return fd
}

// sendSignal prefers the process descriptor: signals delivered through it
// address the exact kernel process, never a recycled pid.
func (h *ChildHandle) sendSignal(sig syscall.Signal) error {
	if h.pidfd >= 0 {
		err := unix.PidfdSendSignal(h.pidfd, unix.Signal(sig), nil, 0)
		if err == nil || !errors.Is(err, unix.ENOSYS) {
			return err
		}
	}
	return unix.Kill(h.pid, unix.Signal(sig))
}

func (h *ChildHandle) closePidfd() {
	if h.pidfd >= 0 {
		_ = unix.Close(h.pidfd)
		h.pidfd = -1
	}
}
