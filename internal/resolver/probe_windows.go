//go:build windows

package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// IsExecutable reports whether target is a file with an executable extension.
func IsExecutable(target string) bool {
	if target == "" {
		return false
	}
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return false
	}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".exe", ".cmd", ".bat", ".com":
		return true
	default:
		return false
	}
}
