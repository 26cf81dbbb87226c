package fork

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"syscall"
)

var (
	// ErrNotOwned reports an operation on a handle that does not own its
	// child (an orphaned child, whose supervision was handed to init).
	ErrNotOwned = errors.New("fork: handle does not own its child")

	// ErrReaped reports a Wait on a handle whose child has already been
	// reaped. Waiting again could block against an unrelated process that
	// has since reused the pid.
	ErrReaped = errors.New("fork: child already reaped")

	// ErrUnsupported is returned on platforms without fork supervision.
	ErrUnsupported = errors.New("fork: not supported on this platform")
)

// Ownership states. The state only ever moves forward.
const (
	stateAlive uint32 = iota
	stateKilled
	stateReaped
)

// ownership records the supervision duties a handle carries for a
// non-orphaned child: the liveness tri-state and the exclusively owned guard
// descriptor whose closure releases the watchdog.
type ownership struct {
	state atomic.Uint32
	guard *os.File
}

// ChildHandle identifies one supervised child process.
//
// Concurrent Signal calls and a single concurrent Wait on the same handle are
// safe; this is what makes "kill from one goroutine while another is blocked
// in Wait" race-free. Close must not be called concurrently with itself or
// with other methods; the caller serializes release.
type ChildHandle struct {
	pid   int
	pidfd int // kernel process descriptor, -1 where unavailable
	owns  *ownership
}

// Pid returns the child's process id. For orphaned children the pid is
// informational only: the handle cannot signal or wait on it.
func (h *ChildHandle) Pid() int { return h.pid }

// Owned reports whether this handle supervises its child. Orphaned children
// report false.
func (h *ChildHandle) Owned() bool { return h.owns != nil }

// WaitStatus describes how a child terminated.
type WaitStatus struct {
	// Exited is true when the child exited normally; Code carries its exit
	// code. Otherwise the child was terminated by Signal, and CoreDumped
	// reports whether the signal produced a core dump.
	Exited     bool
	Code       int
	Signal     syscall.Signal
	CoreDumped bool
}

func (ws WaitStatus) String() string {
	if ws.Exited {
		return fmt.Sprintf("exited with code %d", ws.Code)
	}
	if ws.CoreDumped {
		return fmt.Sprintf("killed by %s (core dumped)", ws.Signal)
	}
	return fmt.Sprintf("killed by %s", ws.Signal)
}

// Success reports whether the child exited normally with code zero.
func (ws WaitStatus) Success() bool { return ws.Exited && ws.Code == 0 }
