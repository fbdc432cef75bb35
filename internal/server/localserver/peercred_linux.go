//go:build linux

package localserver

import (
	"net"

	"golang.org/x/sys/unix"
)

// peerAttrs returns the peer's pid and uid as log attributes.
func peerAttrs(conn net.Conn) []any {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return nil
	}
	raw, err := uc.SyscallConn()
	if err != nil {
		return nil
	}

	var cred *unix.Ucred
	var credErr error
	err = raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil || credErr != nil {
		return nil
	}
	return []any{"peer_pid", cred.Pid, "peer_uid", cred.Uid}
}
