//go:build !windows

package fork

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// Wait blocks until the child terminates and reports how. Interrupted waits
// are retried; any other failure is returned as-is. After a successful Wait
// the handle is reaped and must not be waited on again.
func (h *ChildHandle) Wait() (WaitStatus, error) {
	if h.owns == nil {
		return WaitStatus{}, ErrNotOwned
	}
	if h.owns.state.Load() == stateReaped {
		return WaitStatus{}, ErrReaped
	}
	ws, err := waitPid(h.pid)
	if err != nil {
		return WaitStatus{}, err
	}
	h.owns.state.Store(stateReaped)
	return ws, nil
}

func waitPid(pid int) (WaitStatus, error) {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, 0, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return WaitStatus{}, fmt.Errorf("fork: wait4 pid %d: %w", pid, err)
		}
		if wpid != pid {
			continue
		}
		switch {
		case ws.Exited():
			return WaitStatus{Exited: true, Code: ws.ExitStatus()}, nil
		case ws.Signaled():
			return WaitStatus{Signal: ws.Signal(), CoreDumped: ws.CoreDump()}, nil
		}
		// Stopped or continued: not a termination, keep waiting.
	}
}

// Signal delivers sig to the child. A zero signal probes for existence
// without delivering anything. Once the handle knows the child is dead
// (killed or reaped), Signal answers ESRCH without the syscall; that is an
// optimization, the pid could not have been recycled underneath us either
// way because the child is unreaped until Wait or Close reaps it.
func (h *ChildHandle) Signal(sig syscall.Signal) error {
	if h.owns == nil {
		return ErrNotOwned
	}
	if h.owns.state.Load() != stateAlive {
		return unix.ESRCH
	}
	if err := h.sendSignal(sig); err != nil {
		return err
	}
	if sig == unix.SIGKILL {
		// Best effort; a concurrent caller may have advanced it first.
		h.owns.state.CompareAndSwap(stateAlive, stateKilled)
	}
	return nil
}

// Close releases the handle. It must be called exactly once and never
// concurrently with other methods on the same handle.
//
// If the child is still alive it is SIGKILLed and reaped; a kill or wait
// failure at that point panics, because returning quietly would leave an
// unsupervised subtree running, which is the one thing this type exists to
// prevent. The child's entire process group is then swept with SIGKILL to
// catch descendants, and the guard descriptor is closed, releasing the
// watchdog.
func (h *ChildHandle) Close() error {
	if h.owns == nil {
		h.closePidfd()
		return nil
	}
	st := h.owns.state.Load()
	if st == stateAlive {
		if err := h.Signal(unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			panic(fmt.Sprintf("fork: release: kill pid %d: %v", h.pid, err))
		}
		st = h.owns.state.Load()
	}
	if st != stateReaped {
		if _, err := waitPid(h.pid); err != nil {
			panic(fmt.Sprintf("fork: release: reap pid %d: %v", h.pid, err))
		}
		h.owns.state.Store(stateReaped)
	}
	// The group still exists while the watchdog holds membership; sweep it
	// before the guard closure lets the watchdog exit.
	if err := unix.Kill(-h.pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		panic(fmt.Sprintf("fork: release: kill group %d: %v", h.pid, err))
	}
	err := h.owns.guard.Close()
	h.owns = nil
	h.closePidfd()
	if err != nil {
		return fmt.Errorf("fork: close guard: %w", err)
	}
	return nil
}
