package resolver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildEnvMergesPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	environ := []string{
		"PATH=" + strings.Join([]string{"/custom/bin", "/usr/bin", "", "/custom/bin"}, sep),
		"HOME=/home/alice",
		"LANG=C",
	}
	env := BuildEnv(environ, "/home/alice", "/opt/node/bin/node")

	pathValue, ok := lookupEnv(env, "PATH")
	if !ok {
		t.Fatalf("expected PATH in env")
	}
	want := []string{
		"/opt/node/bin",
		filepath.Join("/home/alice", ".npm-global", "bin"),
		filepath.Join("/home/alice", ".local", "bin"),
		filepath.Join("/home/alice", ".volta", "bin"),
		filepath.Join("/home/alice", ".asdf", "shims"),
		filepath.Join("/home/alice", ".nvm", "versions", "node"),
		"/opt/homebrew/bin",
		"/usr/local/bin",
		"/usr/bin",
		"/custom/bin",
	}
	if got := filepath.SplitList(pathValue); strings.Join(got, sep) != strings.Join(want, sep) {
		t.Fatalf("unexpected PATH:\nwant: %v\ngot:  %v", want, got)
	}
	if value, _ := lookupEnv(env, "LANG"); value != "C" {
		t.Fatalf("expected inherited LANG, got %q", value)
	}
	if count := countKey(env, "PATH"); count != 1 {
		t.Fatalf("expected a single PATH entry, got %d", count)
	}
}

func TestBuildEnvWithoutNode(t *testing.T) {
	env := BuildEnv([]string{"PATH=/x"}, "/h", "")
	pathValue, _ := lookupEnv(env, "PATH")
	entries := filepath.SplitList(pathValue)
	if entries[0] != filepath.Join("/h", ".npm-global", "bin") {
		t.Fatalf("expected toolchain dirs first without node, got %v", entries)
	}
	if entries[len(entries)-1] != "/x" {
		t.Fatalf("expected inherited PATH last, got %v", entries)
	}
}

func TestBuildEnvSetsMissingHome(t *testing.T) {
	env := BuildEnv([]string{"PATH=/bin"}, "/home/bob", "")
	if value, _ := lookupEnv(env, "HOME"); value != "/home/bob" {
		t.Fatalf("expected HOME to be filled, got %q", value)
	}

	env = BuildEnv([]string{"HOME=/elsewhere"}, "/home/bob", "")
	if value, _ := lookupEnv(env, "HOME"); value != "/elsewhere" {
		t.Fatalf("expected inherited HOME to win, got %q", value)
	}
}

func TestBuildEnvDoesNotMutateInput(t *testing.T) {
	environ := []string{"PATH=/bin"}
	_ = BuildEnv(environ, "/h", "")
	if environ[0] != "PATH=/bin" {
		t.Fatalf("input environment was modified: %v", environ)
	}
}

func TestMergePath(t *testing.T) {
	sep := string(os.PathListSeparator)
	got := MergePath("/a", "", "/b", "/a", "/c", "/b")
	if got != strings.Join([]string{"/a", "/b", "/c"}, sep) {
		t.Fatalf("MergePath = %q", got)
	}
	if MergePath() != "" {
		t.Fatalf("expected empty PATH for no entries")
	}
}

func countKey(env []string, key string) int {
	count := 0
	for _, entry := range env {
		if strings.HasPrefix(entry, key+"=") {
			count++
		}
	}
	return count
}
