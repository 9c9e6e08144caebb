// Package auth implements same-executable peer verification: confirming
// the process on the other end of a channel was launched from the same
// executable image as this one. It is advisory identity binding, not
// cryptographic authentication — it trusts the OS-supplied peer-process
// metadata.
package auth

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
)

var (
	ErrPathMismatch          = errors.New("auth: peer executable path does not match")
	ErrPathLookupUnsupported = errors.New("auth: executable path lookup not supported on this platform")
)

// Resolver maps process identity to executable image paths. The zero-value
// OSResolver serves production; tests inject fakes.
type Resolver interface {
	// CurrentPath returns the path of this process's executable image.
	CurrentPath() (string, error)
	// PathOfPID returns the path of the executable image backing pid.
	PathOfPID(pid int) (string, error)
}

// OSResolver resolves executable paths from the running operating system.
type OSResolver struct{}

func (OSResolver) CurrentPath() (string, error) { return os.Executable() }

func (OSResolver) PathOfPID(pid int) (string, error) { return pathOfPID(pid) }

// Verifier compares the local executable path against a peer's. A nil
// Resolver selects OSResolver.
type Verifier struct {
	Resolver Resolver
}

// Verify fails unless the executable path of pid equals this process's
// own, and returns the verified peer path. Failure to resolve either path
// is a verification failure, never a pass.
func (v Verifier) Verify(pid int) (string, error) {
	r := v.Resolver
	if r == nil {
		r = OSResolver{}
	}
	self, err := r.CurrentPath()
	if err != nil {
		return "", fmt.Errorf("auth: resolving own executable path: %w", err)
	}
	peer, err := r.PathOfPID(pid)
	if err != nil {
		return "", fmt.Errorf("auth: resolving peer executable path: %w", err)
	}
	if !pathsEqual(self, peer, caseInsensitivePaths()) {
		return "", fmt.Errorf("%w: local %q, peer pid %d at %q", ErrPathMismatch, self, pid, peer)
	}
	return peer, nil
}

func pathsEqual(a, b string, foldCase bool) bool {
	if foldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// caseInsensitivePaths reports whether filesystem paths compare
// case-insensitively on this platform.
func caseInsensitivePaths() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return true
	default:
		return false
	}
}
