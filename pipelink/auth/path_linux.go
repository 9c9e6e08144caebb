//go:build linux

package auth

import (
	"fmt"
	"os"
)

func pathOfPID(pid int) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
}
