//go:build !windows

package fork

import (
	"os/signal"
	"syscall"
)

// ignoreSignals durably ignores every externally deliverable signal, so the
// only way the watchdog ever dies is the guard protocol (or SIGKILL from the
// group sweep it performs itself). Synchronous fault signals and the
// runtime-internal ones are left alone.
func ignoreSignals() {
	signal.Ignore(
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGPIPE,
		syscall.SIGALRM,
		syscall.SIGTERM,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
		syscall.SIGTSTP,
		syscall.SIGTTIN,
		syscall.SIGTTOU,
		syscall.SIGXCPU,
		syscall.SIGXFSZ,
		syscall.SIGVTALRM,
		syscall.SIGWINCH,
		syscall.SIGIO,
	)
	// Stray SIGCHLD must not wake the watchdog either.
	signal.Ignore(syscall.SIGCHLD)
}
