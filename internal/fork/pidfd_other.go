//go:build !windows && !linux

package fork

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// No kernel process descriptors here; plain kill is still race-free because
// the handle keeps its child unreaped until Wait or Close.
func openPidfd(int) int { return -1 }

func (h *ChildHandle) sendSignal(sig syscall.Signal) error {
	return unix.Kill(h.pid, sig)
}

func (h *ChildHandle) closePidfd() {}
