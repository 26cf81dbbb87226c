//go:build linux || darwin

package fork

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// blockSignals blocks every maskable signal on the calling thread and
// returns a function that restores the previous mask. The thread is locked
// to the goroutine for the duration so the mask stays with the caller.
//
// Coverage is best effort: process-directed signals can still be delivered
// to other runtime threads, so callers must treat a death inside the window
// as a failed handshake rather than rely on the mask to rule one out.
func blockSignals() (restore func(), err error) {
	runtime.LockOSThread()
	var all, old unix.Sigset_t
	fillSigset(&all)
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, &all, &old); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("pthread_sigmask: %w", err)
	}
	return func() {
		_ = unix.PthreadSigmask(unix.SIG_SETMASK, &old, nil)
		runtime.UnlockOSThread()
	}, nil
}

// unblockSignals clears whatever thread mask this process inherited. The
// watchdog is spawned from inside a blockSignals window; once its
// dispositions are set it opens itself back up so the guard protocol is the
// only thing it ever reacts to.
func unblockSignals() {
	var none unix.Sigset_t
	_ = unix.PthreadSigmask(unix.SIG_SETMASK, &none, nil)
}
