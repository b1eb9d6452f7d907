package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiffCommandPlain(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.md")
	modified := filepath.Join(dir, "b.md")
	if err := os.WriteFile(original, []byte("a\nb\nc"), 0o644); err != nil {
		t.Fatalf("write original: %v", err)
	}
	if err := os.WriteFile(modified, []byte("a\nB\nc"), 0o644); err != nil {
		t.Fatalf("write modified: %v", err)
	}
	cmd := newDiffCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--label", "a.md", original, modified})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("diff: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Changes for a.md", "+1 -1", "- b", "+ B"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestDiffCommandMissingFile(t *testing.T) {
	cmd := newDiffCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing"), "other"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
