// Package pipe provides the named duplex-channel endpoints pipelink runs
// over: Windows named pipes via go-winio, Unix domain sockets elsewhere.
// Both present as net.Listener/net.Conn, so everything above this package
// is platform-neutral.
package pipe

import (
	"context"
	"errors"
	"net"
	"time"
)

var (
	ErrEmptyName = errors.New("pipe: endpoint name must not be empty")
	// ErrPeerLookupUnsupported is returned by PeerPID on platforms where
	// the peer process id cannot be recovered from a connection.
	ErrPeerLookupUnsupported = errors.New("pipe: peer process lookup not supported on this platform")
)

// dialRetryInterval paces reconnection attempts while the server is not
// yet listening.
const dialRetryInterval = 200 * time.Millisecond

// Listen binds the named endpoint and starts accepting connections.
func Listen(name string) (net.Listener, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return listen(name)
}

// Dial connects to the named endpoint as the client side. While the server
// is not yet listening it retries until ctx is done; any other dial error
// is returned immediately.
func Dial(ctx context.Context, name string) (net.Conn, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	for {
		conn, err := dial(name)
		if err == nil {
			return conn, nil
		}
		if !retryable(err) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dialRetryInterval):
		}
	}
}

// PeerPID returns the process id at the other end of an established
// connection. Either side of the channel may ask.
func PeerPID(conn net.Conn) (int, error) {
	return peerPID(conn)
}
