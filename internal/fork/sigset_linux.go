//go:build linux

package fork

import "golang.org/x/sys/unix"

// fillSigset sets every signal in the set. SIGKILL and SIGSTOP cannot be
// masked; the kernel silently leaves them deliverable.
func fillSigset(set *unix.Sigset_t) {
	for i := range set.Val {
		set.Val[i] = ^uint64(0)
	}
}
