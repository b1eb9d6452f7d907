package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// ToolchainDirs lists install locations searched ahead of the inherited PATH.
func ToolchainDirs(home string) []string {
	return []string{
		filepath.Join(home, ".npm-global", "bin"),
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, ".volta", "bin"),
		filepath.Join(home, ".asdf", "shims"),
		filepath.Join(home, ".nvm", "versions", "node"),
		"/opt/homebrew/bin",
		"/usr/local/bin",
		"/usr/bin",
	}
}

// BuildEnv derives the assistant environment from environ.
// HOME is filled in when missing and PATH becomes the node binary directory,
// then the toolchain dirs, then the inherited entries, deduplicated in order.
func BuildEnv(environ []string, home, nodeBinary string) []string {
	env := make([]string, 0, len(environ)+2)
	env = append(env, environ...)
	if value, _ := lookupEnv(env, "HOME"); value == "" && home != "" {
		env = setEnv(env, "HOME", home)
	}

	var parts []string
	if nodeBinary != "" {
		parts = append(parts, filepath.Dir(nodeBinary))
	}
	if home != "" {
		parts = append(parts, ToolchainDirs(home)...)
	}
	current, _ := lookupEnv(env, "PATH")
	parts = append(parts, filepath.SplitList(current)...)
	return setEnv(env, "PATH", MergePath(parts...))
}

// MergePath joins entries into a PATH value, dropping empty and repeated entries.
func MergePath(entries ...string) string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return strings.Join(out, string(os.PathListSeparator))
}

func lookupEnv(env []string, key string) (string, bool) {
	prefix := key + "="
	value, found := "", false
	for _, entry := range env {
		if strings.HasPrefix(entry, prefix) {
			value, found = strings.TrimPrefix(entry, prefix), true
		}
	}
	return value, found
}

func setEnv(env []string, key, value string) []string {
	return append(filterEnv(env, key), key+"="+value)
}

func filterEnv(env []string, key string) []string {
	if len(env) == 0 {
		return env
	}
	prefix := key + "="
	out := make([]string, 0, len(env))
	for _, entry := range env {
		if strings.HasPrefix(entry, prefix) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
