//go:build windows

package pipe

import "net"

// go-winio does not export the pipe handle backing its connections, so the
// peer process id cannot be queried here. Callers relying on peer identity
// must treat this as a verification failure, never as a pass.
func peerPID(conn net.Conn) (int, error) {
	return 0, ErrPeerLookupUnsupported
}
