//go:build darwin

package fork

import "golang.org/x/sys/unix"

// fillSigset sets every signal in the set. SIGKILL and SIGSTOP cannot be
// masked; the kernel silently leaves them deliverable.
func fillSigset(set *unix.Sigset_t) {
	*set = ^unix.Sigset_t(0)
}
