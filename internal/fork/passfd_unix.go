//go:build !windows

package fork

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// The guard descriptor travels from the child back to the parent over a
// connected seqpacket socket pair, as ancillary data on a single zero-length
// message. Each endpoint is used exactly once. Anything else on the wire is
// a protocol failure, never a recoverable condition.
//
// Seqpacket rather than datagram: both preserve message boundaries, but a
// datagram pair has no hangup semantics, so a peer that dies before sending
// would leave the receiver blocked forever. Seqpacket is connection
// oriented; a closed peer wakes the blocked receive with no data, which
// recvGuard reports as a failed handshake.

func socketPair() (parent, child *os.File, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("fork: socketpair: %w", err)
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	parent = os.NewFile(uintptr(fds[0]), "fork-handshake-parent")
	child = os.NewFile(uintptr(fds[1]), "fork-handshake-child")
	return parent, child, nil
}

// sendGuard transmits ownership of the guard descriptor to the peer.
func sendGuard(conn, guard *os.File) error {
	rights := unix.UnixRights(int(guard.Fd()))
	for {
		err := unix.Sendmsg(int(conn.Fd()), nil, rights, nil, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("sendmsg: %w", err)
		}
		return nil
	}
}

// recvGuard receives the guard descriptor. Exactly one descriptor on a
// zero-length payload is accepted; a peer that died without sending (the
// receive returns with no data and no control message) or sent anything
// else yields an error.
func recvGuard(conn *os.File) (*os.File, error) {
	oob := make([]byte, unix.CmsgSpace(4))
	var (
		n, oobn int
		err     error
	)
	for {
		n, oobn, _, _, err = unix.Recvmsg(int(conn.Fd()), nil, oob, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		break
	}
	if err != nil {
		return nil, fmt.Errorf("recvmsg: %w", err)
	}
	if n != 0 {
		return nil, fmt.Errorf("unexpected %d-byte payload in guard handshake", n)
	}
	if oobn == 0 {
		return nil, errors.New("peer closed handshake without sending a descriptor")
	}

	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return nil, fmt.Errorf("parse control message: %w", err)
	}
	if len(msgs) != 1 {
		return nil, fmt.Errorf("expected one control message, got %d", len(msgs))
	}
	fds, err := unix.ParseUnixRights(&msgs[0])
	if err != nil {
		return nil, fmt.Errorf("parse rights: %w", err)
	}
	if len(fds) != 1 {
		for _, fd := range fds {
			unix.Close(fd)
		}
		return nil, fmt.Errorf("expected exactly one descriptor, got %d", len(fds))
	}
	unix.CloseOnExec(fds[0])
	return os.NewFile(uintptr(fds[0]), "guard"), nil
}
