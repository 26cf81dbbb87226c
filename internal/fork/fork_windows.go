//go:build windows

package fork

import "syscall"

// Main is a no-op on Windows: Fork never spawns children here, so there are
// no roles to dispatch.
func Main() {}

// Fork is unsupported on Windows. See the package comment.
func Fork(role string, orphan bool) (*ChildHandle, error) {
	return nil, ErrUnsupported
}

func (h *ChildHandle) Wait() (WaitStatus, error) { return WaitStatus{}, ErrUnsupported }

func (h *ChildHandle) Signal(sig syscall.Signal) error { return ErrUnsupported }

func (h *ChildHandle) Close() error { return nil }
