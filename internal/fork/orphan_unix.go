//go:build !windows

package fork

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// The intermediate writes the detached grandchild's pid here before exiting.
const reportFd = 3

// forkOrphan detaches a role process to init: an intermediate child starts
// the real process in a new session and exits immediately, reparenting it.
// Detachment is concluded successful only on the intermediate's clean zero
// exit. The returned handle reports the grandchild's pid but owns nothing;
// the caller gives up signal and wait capability in exchange for a child
// that outlives it.
func forkOrphan(role string) (*ChildHandle, error) {
	reportR, reportW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("fork: report pipe: %w", err)
	}
	defer reportR.Close()

	cmd, err := roleCommand()
	if err != nil {
		reportW.Close()
		return nil, err
	}
	cmd.ExtraFiles = []*os.File{reportW}
	cmd.Env = append(os.Environ(),
		envMode+"="+modeIntermediate,
		envRole+"="+role,
	)
	if err := cmd.Start(); err != nil {
		reportW.Close()
		return nil, fmt.Errorf("fork: start intermediate: %w", err)
	}
	reportW.Close()

	state, err := cmd.Process.Wait()
	if err != nil {
		return nil, fmt.Errorf("fork: wait intermediate: %w", err)
	}
	if code := state.ExitCode(); code != 0 {
		return nil, fmt.Errorf("fork: detach intermediate exited with code %d", code)
	}

	raw, err := io.ReadAll(reportR)
	if err != nil {
		return nil, fmt.Errorf("fork: read pid report: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		return nil, fmt.Errorf("fork: intermediate reported no pid (%q)", raw)
	}
	return &ChildHandle{pid: pid, pidfd: -1}, nil
}

// intermediateMain runs in the short-lived middle process. It starts the
// detached grandchild in its own session with null stdio, reports the pid,
// and exits so the grandchild falls to init.
func intermediateMain(role string) {
	report := os.NewFile(reportFd, "pid-report")

	cmd, err := roleCommand()
	if err != nil {
		os.Exit(1)
	}
	cmd.Env = append(os.Environ(),
		envMode+"="+modeDetached,
		envRole+"="+role,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		os.Exit(1)
	}
	fmt.Fprintf(report, "%d", cmd.Process.Pid)
	report.Close()
	os.Exit(0)
}
