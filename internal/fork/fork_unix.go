//go:build !windows

package fork

import (
	"fmt"
	"os"
	"os/exec"
)

// Main dispatches re-executed child roles. Call it first thing in main(),
// before flag parsing or any other setup: in the original process it returns
// immediately, and in a re-executed child it runs the child's role and never
// returns.
func Main() {
	mode := os.Getenv(envMode)
	if mode == "" {
		return
	}
	role := os.Getenv(envRole)
	os.Unsetenv(envMode)
	os.Unsetenv(envRole)

	switch mode {
	case modeWatchdog:
		watchdogMain()
	case modeIntermediate:
		intermediateMain(role)
	case modeSupervised:
		superviseSelf()
		runRole(role)
	case modeDetached:
		runRole(role)
	default:
		fmt.Fprintf(os.Stderr, "fork: unknown dispatch mode %q\n", mode)
		os.Exit(1)
	}
	os.Exit(0)
}

func runRole(name string) {
	fn, ok := lookupRole(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "fork: role %q not registered in this binary (have %v)\n", name, registeredRoles())
		os.Exit(1)
	}
	fn()
}

// Fork creates a new process running the registered role function.
//
// With orphan false the child is supervised: it runs in its own process
// group, guarded by a watchdog that kills the whole group the moment the
// returned handle's guard descriptor is no longer held open by any process.
// The returned handle owns the child and supports Signal, Wait and Close.
//
// With orphan true the child is detached to init instead. The returned
// handle carries the detached child's pid but no ownership: Signal and Wait
// on it are usage errors.
//
// Only resource exhaustion before any process exists is reported as an
// ordinary error; a handshake that breaks after the subtree started is torn
// down in full and reported as an error without ever returning a handle.
func Fork(role string, orphan bool) (*ChildHandle, error) {
	if _, ok := lookupRole(role); !ok {
		return nil, fmt.Errorf("fork: role %q not registered", role)
	}
	if orphan {
		return forkOrphan(role)
	}
	return forkSupervised(role)
}

// roleCommand prepares a re-execution of the current binary. The caller
// fills in the dispatch environment and any descriptors to pass down.
func roleCommand() (*exec.Cmd, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("fork: locate executable: %w", err)
	}
	return exec.Command(self), nil
}
