//go:build linux || darwin

package pipe

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// SocketDir is where endpoint sockets are created.
var SocketDir = "/tmp"

// Addr resolves an endpoint name to its socket path.
func Addr(name string) string {
	if strings.HasSuffix(name, ".sock") {
		return filepath.Join(SocketDir, name)
	}
	return filepath.Join(SocketDir, name+".sock")
}

func listen(name string) (net.Listener, error) {
	socketPath := Addr(name)

	// A socket file left over from a previous run would make Listen fail
	// with "address already in use".
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, err
	}

	return net.Listen("unix", socketPath)
}

func dial(name string) (net.Conn, error) {
	return net.Dial("unix", Addr(name))
}

// retryable reports whether a dial failure means the server has not bound
// the endpoint yet.
func retryable(err error) bool {
	return errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ECONNREFUSED)
}
