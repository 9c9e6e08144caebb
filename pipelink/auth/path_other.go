//go:build !linux

package auth

func pathOfPID(pid int) (string, error) {
	return "", ErrPathLookupUnsupported
}
