//go:build !windows

package fork

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/Paintersrp/warden/internal/proctree"
)

func markerPopulation(t *testing.T, dir string) int {
	t.Helper()
	pids, err := proctree.WithCwd(dir)
	if err != nil {
		t.Fatalf("list processes in %s: %v", dir, err)
	}
	return len(pids)
}

// Releasing a handle without waiting first must still, within a bounded
// delay, leave zero processes inside the marker directory: the child, the
// grandchild it spawned, everything.
func TestReleaseWithoutWaitKillsWholeGroup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(testDirEnv, dir)

	h, err := Fork("test.marker", false)
	if err != nil {
		t.Fatalf("fork: %v", err)
	}

	ready := filepath.Join(dir, "marker-ready")
	waitFor(t, 10*time.Second, "marker child to settle", func() bool {
		_, err := os.Stat(ready)
		return err == nil
	})
	waitFor(t, 10*time.Second, "marker tree to populate", func() bool {
		return markerPopulation(t, dir) >= 2
	})

	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	waitFor(t, 10*time.Second, "marker tree to vanish", func() bool {
		return markerPopulation(t, dir) == 0
	})
}

// Killing the supervising process itself with SIGKILL, before it releases
// anything, must still clean out its forked descendants: the kernel closes
// the dead supervisor's guard descriptor, the watchdog wakes, and the
// subtree goes down with no live process involved in the cleanup.
func TestSupervisorDeathKillsDescendants(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(testDirEnv, dir)

	h, err := Fork("test.middle", false)
	if err != nil {
		t.Fatalf("fork: %v", err)
	}
	defer h.Close()

	waitFor(t, 10*time.Second, "middle supervisor to fork its child", func() bool {
		_, err := os.Stat(filepath.Join(dir, "middle-ready"))
		return err == nil
	})
	waitFor(t, 10*time.Second, "inner marker child to settle", func() bool {
		_, err := os.Stat(filepath.Join(dir, "marker-ready"))
		return err == nil
	})

	// Uncatchable kill: the middle supervisor gets no chance to release
	// the handle it holds.
	if err := h.Signal(unix.SIGKILL); err != nil {
		t.Fatalf("kill middle: %v", err)
	}
	if _, err := h.Wait(); err != nil {
		t.Fatalf("wait middle: %v", err)
	}

	waitFor(t, 15*time.Second, "descendants of dead supervisor to vanish", func() bool {
		return markerPopulation(t, dir) == 0
	})
}
