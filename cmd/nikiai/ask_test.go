//go:build !windows

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newAskTestVault(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	vault := t.TempDir()
	if err := os.WriteFile(filepath.Join(vault, "note.md"), []byte("alpha\nbeta"), 0o644); err != nil {
		t.Fatalf("write note: %v", err)
	}
	return vault
}

func TestAskPromptFromArgsAndStdin(t *testing.T) {
	got, err := askPrompt([]string{"hello", "world"}, nil)
	if err != nil || got != "hello world" {
		t.Fatalf("askPrompt args = %q, %v", got, err)
	}
	got, err = askPrompt([]string{"-"}, strings.NewReader("from stdin"))
	if err != nil || got != "from stdin" {
		t.Fatalf("askPrompt stdin = %q, %v", got, err)
	}
}

func TestAskCommandPrintsReply(t *testing.T) {
	vault := newAskTestVault(t)
	cmd := newAskCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--vault", vault, "--note", "note.md", "--include-note", "--command", "cat", "summarize"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("ask: %v (stderr %q)", err, errOut.String())
	}
	got := out.String()
	for _, want := range []string{"[@ Current note: note.md]\nalpha\nbeta", "[User]\nsummarize"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in reply:\n%s", want, got)
		}
	}
}

func TestAskCommandApplyWritesNote(t *testing.T) {
	vault := newAskTestVault(t)
	command := "printf '```\\nrewritten\\n```\\n'"
	cmd := newAskCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--vault", vault, "--note", "note.md", "--command", command, "--diff", "--apply", "rewrite"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("ask: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(vault, "note.md"))
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if string(data) != "rewritten" {
		t.Fatalf("expected note to be rewritten, got %q", string(data))
	}
	if !strings.Contains(out.String(), "Changes for note.md") {
		t.Fatalf("expected diff in output:\n%s", out.String())
	}
}

func TestAskCommandFailureReturnsError(t *testing.T) {
	vault := newAskTestVault(t)
	cmd := newAskCmd()
	var errOut bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--vault", vault, "--command", "echo broken >&2; exit 3", "hello"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(errOut.String(), "broken") {
		t.Fatalf("expected assistant stderr in output, got %q", errOut.String())
	}
}

func TestTranscriptPrintsSavedConversation(t *testing.T) {
	vault := newAskTestVault(t)
	ask := newAskCmd()
	ask.SetOut(&bytes.Buffer{})
	ask.SetErr(&bytes.Buffer{})
	ask.SetArgs([]string{"--vault", vault, "--continue", "--command", "echo saved reply", "remember this"})
	if err := ask.Execute(); err != nil {
		t.Fatalf("ask: %v", err)
	}

	transcript := newTranscriptCmd()
	var out bytes.Buffer
	transcript.SetOut(&out)
	transcript.SetArgs([]string{"--vault", vault})
	if err := transcript.Execute(); err != nil {
		t.Fatalf("transcript: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "> remember this") || !strings.Contains(got, "saved reply") {
		t.Fatalf("unexpected transcript:\n%s", got)
	}
}
