//go:build !windows

package resolver

import (
	"os"

	"golang.org/x/sys/unix"
)

// IsExecutable reports whether target is a file the current user may execute.
func IsExecutable(target string) bool {
	if target == "" {
		return false
	}
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(target, unix.X_OK) == nil
}
