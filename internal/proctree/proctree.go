// Package proctree inspects live process trees. It backs the CLI's tree
// view and the teardown checks in tests: after a supervised subtree is
// released, nothing should remain below its root or inside its marker
// working directory.
package proctree

import (
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/process"
)

// Node is one process in a tree listing.
type Node struct {
	Pid   int32
	Ppid  int32
	Name  string
	Depth int
}

// Descendants returns root and every process below it, depth-first, each
// annotated with its depth relative to root. Processes that disappear while
// the snapshot is taken are skipped.
func Descendants(root int32) ([]Node, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("proctree: list processes: %w", err)
	}

	children := make(map[int32][]int32)
	names := make(map[int32]string)
	parents := make(map[int32]int32)
	for _, p := range procs {
		ppid, err := p.Ppid()
		if err != nil {
			continue
		}
		children[ppid] = append(children[ppid], p.Pid)
		parents[p.Pid] = ppid
		if name, err := p.Name(); err == nil {
			names[p.Pid] = name
		}
	}
	for _, kids := range children {
		sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	}

	var nodes []Node
	var walk func(pid int32, depth int)
	walk = func(pid int32, depth int) {
		nodes = append(nodes, Node{Pid: pid, Ppid: parents[pid], Name: names[pid], Depth: depth})
		for _, kid := range children[pid] {
			walk(kid, depth+1)
		}
	}
	walk(root, 0)
	return nodes, nil
}

// WithCwd returns the pids of all processes whose working directory is dir.
// Processes whose cwd cannot be read (permissions, zombies, races) are
// skipped rather than reported as errors.
func WithCwd(dir string) ([]int32, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("proctree: list processes: %w", err)
	}
	var pids []int32
	for _, p := range procs {
		cwd, err := p.Cwd()
		if err != nil || cwd != dir {
			continue
		}
		pids = append(pids, p.Pid)
	}
	return pids, nil
}

// Ancestors returns the chain of parents above pid, nearest first, ending
// at pid 1 or at the edge of the pid namespace. Pids whose parent cannot be
// read terminate the chain early.
func Ancestors(pid int32) []int32 {
	var chain []int32
	for pid > 1 {
		p, err := process.NewProcess(pid)
		if err != nil {
			break
		}
		ppid, err := p.Ppid()
		if err != nil || ppid <= 0 || ppid == pid {
			break
		}
		chain = append(chain, ppid)
		pid = ppid
	}
	return chain
}

// Alive reports whether a process with the given pid currently exists.
func Alive(pid int32) bool {
	ok, err := process.PidExists(pid)
	return err == nil && ok
}
