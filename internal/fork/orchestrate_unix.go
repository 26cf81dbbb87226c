//go:build !windows

package fork

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// The handshake socket arrives in every supervised child as descriptor 3,
// the first slot after stdio.
const handshakeFd = 3

// guardFd is where the watchdog finds the guard pipe's read end.
const guardFd = 3

func forkSupervised(role string) (*ChildHandle, error) {
	parentEnd, childEnd, err := socketPair()
	if err != nil {
		return nil, err
	}
	defer parentEnd.Close()

	cmd, err := roleCommand()
	if err != nil {
		childEnd.Close()
		return nil, err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{childEnd}
	// The kernel makes the child a process-group leader before it execs,
	// so no other party can ever observe it in the caller's group.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = append(os.Environ(),
		envMode+"="+modeSupervised,
		envRole+"="+role,
	)

	if err := cmd.Start(); err != nil {
		childEnd.Close()
		return nil, fmt.Errorf("fork: start role %q: %w", role, err)
	}
	childEnd.Close()
	pid := cmd.Process.Pid

	guard, err := recvGuard(parentEnd)
	if err != nil {
		// A broken handshake means the subtree is in an unknown state.
		// No handle may reference it: kill the whole group and reap the
		// direct child before reporting failure.
		_ = unix.Kill(-pid, unix.SIGKILL)
		_, _ = waitPid(pid)
		return nil, fmt.Errorf("fork: guard handshake with pid %d: %w", pid, err)
	}

	h := &ChildHandle{pid: pid, pidfd: openPidfd(pid)}
	h.owns = &ownership{guard: guard}
	return h, nil
}

// superviseSelf runs in the supervised child before its role function. It
// builds the guard subtree: open the guard pipe, spawn the leaf watchdog
// holding the read end, and pass the write end back to the parent over the
// handshake socket. Any failure tears down what was built and exits without
// ever reaching the role function.
func superviseSelf() {
	handshake := os.NewFile(handshakeFd, "fork-handshake")
	// Keep the handshake socket out of every process spawned below.
	unix.CloseOnExec(handshakeFd)

	// Setpgid at spawn normally took care of this; recheck so a caller
	// that spawned us differently still ends up as a group leader.
	if unix.Getpgrp() != unix.Getpid() {
		if err := unix.Setpgid(0, 0); err != nil {
			fatalSubtree("setpgid: %v", err)
		}
	}

	guardR, guardW, err := os.Pipe()
	if err != nil {
		fatalSubtree("guard pipe: %v", err)
	}

	// Narrow the window for external signals while the subtree is put
	// together. Best effort only; if something kills us anyway the parent
	// sees a failed handshake and tears the group down.
	restore, err := blockSignals()
	if err != nil {
		fatalSubtree("block signals: %v", err)
	}

	wd, err := roleCommand()
	if err != nil {
		restore()
		fatalSubtree("%v", err)
	}
	wd.ExtraFiles = []*os.File{guardR}
	wd.Env = append(os.Environ(),
		envMode+"="+modeWatchdog,
		envWatchdogPgid+"="+strconv.Itoa(unix.Getpgrp()),
		envWatchdogVictim+"="+strconv.Itoa(unix.Getpid()),
	)
	if err := wd.Start(); err != nil {
		restore()
		fatalSubtree("start watchdog: %v", err)
	}
	guardR.Close()

	if err := sendGuard(handshake, guardW); err != nil {
		// Kill the helper we created before giving up; never return
		// control as if construction had succeeded.
		_ = wd.Process.Kill()
		_, _ = waitPid(wd.Process.Pid)
		restore()
		fatalSubtree("send guard: %v", err)
	}
	guardW.Close()
	handshake.Close()
	restore()
}

// fatalSubtree aborts subtree construction. Exiting closes our copies of the
// guard pipe and the handshake socket, which wakes the watchdog (if it was
// started) and fails the parent's receive, so both sides converge on "no
// such child".
func fatalSubtree(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fork: child %d: "+format+"\n", append([]any{os.Getpid()}, args...)...)
	os.Exit(1)
}

// watchdogMain is the leaf of the supervision tree. It holds exactly one
// descriptor, the guard pipe's read end, and blocks on it. End-of-file means
// no process anywhere holds the write end any more: the supervised child has
// lost its supervisor, by release or by death, and the whole group must go.
func watchdogMain() {
	ignoreSignals()
	unblockSignals()

	pgid, err1 := strconv.Atoi(os.Getenv(envWatchdogPgid))
	victim, err2 := strconv.Atoi(os.Getenv(envWatchdogVictim))
	if err1 != nil || err2 != nil || pgid <= 0 || victim <= 0 {
		os.Exit(1)
	}
	os.Unsetenv(envWatchdogPgid)
	os.Unsetenv(envWatchdogVictim)

	guard := os.NewFile(guardFd, "guard")
	buf := make([]byte, 1)
	for {
		n, err := guard.Read(buf)
		if n > 0 {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, unix.EINTR) {
			// Anything other than hangup is a broken guard; erring
			// toward the kill keeps the guarantee intact.
			break
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if unix.Getpgrp() == pgid {
		_ = unix.Kill(victim, unix.SIGKILL)
		// Sweep the rest of the group, ourselves included.
		_ = unix.Kill(-pgid, unix.SIGKILL)
	}
	os.Exit(0)
}
