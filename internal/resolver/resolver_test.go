//go:build !windows

package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"pkt.systems/nikiai/schema"
)

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "blank", in: "   ", want: ""},
		{name: "trim", in: "  claude -p  ", want: "claude -p"},
		{name: "directory", in: dir + " -p \"{prompt}\"", want: filepath.Join(dir, "claude") + " -p \"{prompt}\""},
		{name: "missing-directory", in: "/does/not/exist -p", want: "/does/not/exist -p"},
	}
	for _, tc := range tests {
		if got := NormalizeCommand(tc.in); got != tc.want {
			t.Fatalf("%s: NormalizeCommand(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestIsExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := writeFile(t, dir, "tool", "#!/bin/sh\n", 0o755)
	plain := writeFile(t, dir, "plain", "data", 0o644)
	if !IsExecutable(exe) {
		t.Fatalf("expected %s to be executable", exe)
	}
	if IsExecutable(plain) {
		t.Fatalf("did not expect %s to be executable", plain)
	}
	if IsExecutable(dir) {
		t.Fatalf("directories are not executables")
	}
	if IsExecutable(filepath.Join(dir, "missing")) {
		t.Fatalf("missing files are not executables")
	}
}

func TestIsNodeScript(t *testing.T) {
	dir := t.TempDir()
	node := writeFile(t, dir, "node-cli", "#!/usr/bin/env node\nconsole.log('hi')\n", 0o755)
	shell := writeFile(t, dir, "sh-cli", "#!/bin/sh\n# node is mentioned later\n", 0o755)
	if !IsNodeScript(node) {
		t.Fatalf("expected node shebang to be detected")
	}
	if IsNodeScript(shell) {
		t.Fatalf("only the first line counts")
	}
	if IsNodeScript(filepath.Join(dir, "missing")) {
		t.Fatalf("missing file is not a node script")
	}
}

func TestLatestNVMNode(t *testing.T) {
	root := t.TempDir()
	for _, version := range []string{"v18.0.0", "v20.11.1", "v16.3.0"} {
		binDir := filepath.Join(root, version, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		writeFile(t, binDir, "node", "#!/bin/sh\n", 0o755)
	}
	if err := os.MkdirAll(filepath.Join(root, "v99.0.0"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(root, "v20.11.1", "bin", "node")
	if got := LatestNVMNode(root); got != want {
		t.Fatalf("LatestNVMNode = %q, want %q", got, want)
	}
	if got := LatestNVMNode(filepath.Join(root, "missing")); got != "" {
		t.Fatalf("expected empty result for missing root, got %q", got)
	}
}

func TestResolveConfiguredCommandInlinesPrompt(t *testing.T) {
	r := New(Config{
		Command:        `claude -p "{prompt}"`,
		WorkingDir:     "/vault",
		Home:           t.TempDir(),
		Environ:        []string{"PATH=/bin"},
		NodeCandidates: []string{},
	})
	inv, err := r.Resolve(`say "hi"`)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if inv.Mode != ModeShell {
		t.Fatalf("expected shell mode, got %s", inv.Mode)
	}
	if inv.Path != "/bin/sh" {
		t.Fatalf("expected /bin/sh, got %q", inv.Path)
	}
	want := []string{"-c", `claude -p "say \"hi\""`}
	if !reflect.DeepEqual(inv.Args, want) {
		t.Fatalf("unexpected args:\nwant: %#v\ngot:  %#v", want, inv.Args)
	}
	if inv.UseStdin {
		t.Fatalf("inlined prompts must not be sent on stdin")
	}
	if inv.Dir != "/vault" {
		t.Fatalf("expected working dir, got %q", inv.Dir)
	}
	if value, _ := lookupEnv(inv.Env, "PATH"); value == "/bin" {
		t.Fatalf("expected derived PATH, got %q", value)
	}
}

func TestResolveConfiguredCommandUsesStdin(t *testing.T) {
	r := New(Config{Command: "claude -p", Home: t.TempDir(), Environ: []string{}, NodeCandidates: []string{}})
	inv, err := r.Resolve("hello")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !inv.UseStdin || inv.Stdin != "hello" {
		t.Fatalf("expected prompt on stdin, got use=%v stdin=%q", inv.UseStdin, inv.Stdin)
	}
	if inv.Args[len(inv.Args)-1] != "claude -p" {
		t.Fatalf("expected command unchanged, got %#v", inv.Args)
	}
}

func TestResolveDetectedBinary(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")
	bin := writeFile(t, dir, "claude", "#!/bin/sh\ncat\n", 0o755)
	r := New(Config{
		Home:           t.TempDir(),
		Environ:        []string{},
		Candidates:     []string{missing, bin},
		NodeCandidates: []string{},
	})
	inv, err := r.Resolve("prompt text")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if inv.Mode != ModeDirect || inv.Path != bin || len(inv.Args) != 0 {
		t.Fatalf("unexpected invocation: %+v", inv)
	}
	if !inv.UseStdin || inv.Stdin != "prompt text" {
		t.Fatalf("expected prompt on stdin")
	}
}

func TestResolveNodeScriptUsesNode(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "claude", "#!/usr/bin/env node\n", 0o755)
	node := writeFile(t, dir, "node", "#!/bin/sh\n", 0o755)
	r := New(Config{
		Home:           t.TempDir(),
		Environ:        []string{},
		Candidates:     []string{script},
		NodeCandidates: []string{node},
	})
	inv, err := r.Resolve("x")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if inv.Path != node {
		t.Fatalf("expected node interpreter %q, got %q", node, inv.Path)
	}
	if !reflect.DeepEqual(inv.Args, []string{script}) {
		t.Fatalf("expected script argument, got %#v", inv.Args)
	}
	pathValue, _ := lookupEnv(inv.Env, "PATH")
	if filepath.SplitList(pathValue)[0] != dir {
		t.Fatalf("expected node dir first on PATH, got %q", pathValue)
	}
}

func TestResolveNodeScriptFallsBackToNodeOnPath(t *testing.T) {
	if LookPath("node", "/opt/homebrew/bin:/usr/local/bin:/usr/bin") != "" {
		t.Skip("node installed in a toolchain dir on this host")
	}
	scriptDir := t.TempDir()
	script := writeFile(t, scriptDir, "claude", "#!/usr/bin/env node\n", 0o755)
	nodeDir := t.TempDir()
	node := writeFile(t, nodeDir, "node", "#!/bin/sh\n", 0o755)
	r := New(Config{
		Home:           t.TempDir(),
		Environ:        []string{"PATH=" + nodeDir},
		Candidates:     []string{script},
		NodeCandidates: []string{},
	})
	inv, err := r.Resolve("x")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if inv.Path != node {
		t.Fatalf("expected node from PATH %q, got %q", node, inv.Path)
	}
	if !reflect.DeepEqual(inv.Args, []string{script}) {
		t.Fatalf("expected script argument, got %#v", inv.Args)
	}
	if !inv.UseStdin || inv.Stdin != "x" {
		t.Fatalf("expected prompt on stdin, got %+v", inv)
	}
}

func TestResolveNodeScriptRunsDirectlyWithoutNode(t *testing.T) {
	if LookPath("node", "/opt/homebrew/bin:/usr/local/bin:/usr/bin") != "" {
		t.Skip("node installed in a toolchain dir on this host")
	}
	dir := t.TempDir()
	script := writeFile(t, dir, "claude", "#!/usr/bin/env node\n", 0o755)
	r := New(Config{
		Home:           t.TempDir(),
		Environ:        []string{"PATH=" + t.TempDir()},
		Candidates:     []string{script},
		NodeCandidates: []string{},
	})
	inv, err := r.Resolve("x")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if inv.Path != script {
		t.Fatalf("expected script to run directly, got %q", inv.Path)
	}
	if len(inv.Args) != 0 {
		t.Fatalf("expected no arguments, got %#v", inv.Args)
	}
	if inv.Mode != ModeDirect {
		t.Fatalf("expected direct mode, got %q", inv.Mode)
	}
}

func TestResolveFallsBackToDerivedPath(t *testing.T) {
	dir := t.TempDir()
	bin := writeFile(t, dir, "claude", "#!/bin/sh\n", 0o755)
	r := New(Config{
		Home:           t.TempDir(),
		Environ:        []string{"PATH=" + dir},
		Candidates:     []string{},
		NodeCandidates: []string{},
	})
	if LookPath("claude", "/opt/homebrew/bin:/usr/local/bin:/usr/bin") != "" {
		t.Skip("claude installed on this host")
	}
	if got := r.FindAssistantBinary(); got != bin {
		t.Fatalf("expected PATH lookup to find %q, got %q", bin, got)
	}
}

func TestResolveNotFound(t *testing.T) {
	if LookPath("claude", "/opt/homebrew/bin:/usr/local/bin:/usr/bin") != "" {
		t.Skip("claude installed on this host")
	}
	r := New(Config{Home: t.TempDir(), Environ: []string{}, Candidates: []string{}, NodeCandidates: []string{}})
	if _, err := r.Resolve("x"); !errors.Is(err, schema.ErrAssistantNotFound) {
		t.Fatalf("expected ErrAssistantNotFound, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	bin := writeFile(t, dir, "claude", "#!/usr/bin/env node\n", 0o755)
	r := New(Config{Home: t.TempDir(), Environ: []string{}, Candidates: []string{bin}, NodeCandidates: []string{}})
	report := r.Inspect()
	if report.Detected != bin || !report.NodeScript {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Path == "" {
		t.Fatalf("expected derived PATH in report")
	}

	configured := New(Config{Command: " claude -p ", Home: t.TempDir(), Environ: []string{}, Candidates: []string{bin}})
	report = configured.Inspect()
	if report.Normalized != "claude -p" || report.Detected != "" {
		t.Fatalf("configured commands skip detection: %+v", report)
	}
}

func writeFile(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod %s: %v", name, err)
	}
	return path
}
