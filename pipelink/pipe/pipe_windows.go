//go:build windows

package pipe

import (
	"errors"
	"net"
	"strings"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"
)

const pipeBase = `\\.\pipe\`

// Addr resolves an endpoint name to its named-pipe path. Names already in
// pipe form pass through unchanged.
func Addr(name string) string {
	if strings.HasPrefix(name, pipeBase) {
		return name
	}
	return pipeBase + name
}

func listen(name string) (net.Listener, error) {
	return winio.ListenPipe(Addr(name), nil)
}

func dial(name string) (net.Conn, error) {
	return winio.DialPipe(Addr(name), nil)
}

// retryable reports whether a dial failure means the server has not bound
// the endpoint yet, or every pipe instance is momentarily busy.
func retryable(err error) bool {
	return errors.Is(err, windows.ERROR_FILE_NOT_FOUND) ||
		errors.Is(err, windows.ERROR_PIPE_BUSY)
}
