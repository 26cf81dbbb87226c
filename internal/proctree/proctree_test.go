package proctree

import (
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"
)

func TestDescendantsSeesDirectChild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("proctree tests use unix sleep")
	}
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	self := int32(os.Getpid())
	deadline := time.Now().Add(5 * time.Second)
	for {
		nodes, err := Descendants(self)
		if err != nil {
			t.Fatalf("descendants: %v", err)
		}
		found := false
		for _, n := range nodes {
			if n.Pid == int32(cmd.Process.Pid) {
				if n.Ppid != self {
					t.Fatalf("child %d has ppid %d, want %d", n.Pid, n.Ppid, self)
				}
				if n.Depth != 1 {
					t.Fatalf("direct child listed at depth %d", n.Depth)
				}
				found = true
			}
		}
		if found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("direct child never appeared in the tree")
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestAncestorsStartAtDirectParent(t *testing.T) {
	anc := Ancestors(int32(os.Getpid()))
	if len(anc) == 0 {
		t.Fatal("no ancestors for the test process")
	}
	if anc[0] != int32(os.Getppid()) {
		t.Fatalf("nearest ancestor %d, want ppid %d", anc[0], os.Getppid())
	}
}

func TestWithCwdFindsMarkedProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("proctree tests use unix sleep")
	}
	dir := t.TempDir()
	cmd := exec.Command("sleep", "30")
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		pids, err := WithCwd(dir)
		if err != nil {
			t.Fatalf("withcwd: %v", err)
		}
		if len(pids) == 1 && pids[0] == int32(cmd.Process.Pid) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("marked process not found, got %v", pids)
		}
		time.Sleep(25 * time.Millisecond)
	}

	if !Alive(int32(cmd.Process.Pid)) {
		t.Fatal("running child reported dead")
	}
}
