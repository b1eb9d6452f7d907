package resolver

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// shebangProbe is how many leading bytes are inspected for a node shebang.
const shebangProbe = 200

// IsDirectory reports whether target exists and is a directory.
func IsDirectory(target string) bool {
	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsNodeScript reports whether the first line of target mentions node,
// which is how npm-installed launchers look.
func IsNodeScript(target string) bool {
	f, err := os.Open(target)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	buf := make([]byte, shebangProbe)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false
	}
	first := buf[:n]
	if idx := bytes.IndexByte(first, '\n'); idx >= 0 {
		first = first[:idx]
	}
	return bytes.Contains(first, []byte("node"))
}

// DefaultAssistantCandidates lists the well-known assistant install locations.
func DefaultAssistantCandidates(home string) []string {
	return []string{
		filepath.Join(home, ".npm-global", "bin", "claude"),
		filepath.Join(home, ".local", "bin", "claude"),
		"/opt/homebrew/bin/claude",
		"/usr/local/bin/claude",
		"/usr/bin/claude",
	}
}

// DefaultNodeCandidates lists the well-known node install locations.
func DefaultNodeCandidates(home string) []string {
	return []string{
		filepath.Join(home, ".volta", "bin", "node"),
		filepath.Join(home, ".asdf", "shims", "node"),
		filepath.Join(home, ".nvm", "versions", "node", "bin", "node"),
		"/opt/homebrew/bin/node",
		"/usr/local/bin/node",
		"/usr/bin/node",
	}
}

// FirstExecutable returns the first candidate that IsExecutable accepts.
func FirstExecutable(candidates []string) string {
	for _, candidate := range candidates {
		if IsExecutable(candidate) {
			return candidate
		}
	}
	return ""
}

// LatestNVMNode returns the lexically last executable node under an nvm versions root.
func LatestNVMNode(nvmRoot string) string {
	entries, err := os.ReadDir(nvmRoot)
	if err != nil {
		return ""
	}
	var found []string
	for _, entry := range entries {
		candidate := filepath.Join(nvmRoot, entry.Name(), "bin", "node")
		if IsExecutable(candidate) {
			found = append(found, candidate)
		}
	}
	if len(found) == 0 {
		return ""
	}
	sort.Strings(found)
	return found[len(found)-1]
}

// LookPath searches the entries of pathValue for an executable named name.
func LookPath(name, pathValue string) string {
	for _, dir := range filepath.SplitList(pathValue) {
		if dir == "" {
			continue
		}
		if candidate := filepath.Join(dir, name); IsExecutable(candidate) {
			return candidate
		}
	}
	return ""
}
