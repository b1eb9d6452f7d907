package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected config version %d, got %d", CurrentConfigVersion, cfg.ConfigVersion)
	}
	if cfg.Assistant.TimeoutSeconds != 120 {
		t.Fatalf("expected default timeout, got %d", cfg.Assistant.TimeoutSeconds)
	}
}

func TestLoadRequiresConfigVersion(t *testing.T) {
	path := writeConfig(t, `
vault_dir: /notes
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "config_version is required") {
		t.Fatalf("expected config_version required error, got %v", err)
	}
}

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 3
vault_dir: /notes
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRejectsUnsupportedTheme(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
panel:
  markdown_theme: neon
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "panel.markdown_theme") {
		t.Fatalf("expected theme error, got %v", err)
	}
}

func TestLoadReadsValuesAndExpandsEnv(t *testing.T) {
	t.Setenv("NOTES", "/data/notes")
	path := writeConfig(t, `
config_version: 1
vault_dir: $NOTES/main
assistant:
  command: claude -p "{prompt}"
  timeout_seconds: 45
panel:
  include_note: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.VaultDir != "/data/notes/main" {
		t.Fatalf("expected expanded vault dir, got %q", cfg.VaultDir)
	}
	if cfg.Assistant.Command != `claude -p "{prompt}"` {
		t.Fatalf("unexpected command %q", cfg.Assistant.Command)
	}
	if cfg.Assistant.TimeoutSeconds != 45 {
		t.Fatalf("expected timeout 45, got %d", cfg.Assistant.TimeoutSeconds)
	}
	if !cfg.Panel.IncludeNote {
		t.Fatalf("expected include_note true")
	}
	if cfg.Panel.PickerLimit != 10 {
		t.Fatalf("expected default picker limit, got %d", cfg.Panel.PickerLimit)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NIKIAI_ASSISTANT_COMMAND", "my-assistant")
	path := writeConfig(t, `
config_version: 1
assistant:
  command: claude
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Assistant.Command != "my-assistant" {
		t.Fatalf("expected env override, got %q", cfg.Assistant.Command)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	value := expandEnv("$FOO/$UID/$GID/$MISSING")
	if !strings.HasPrefix(value, "bar/") {
		t.Fatalf("expected env expansion, got %q", value)
	}
	if strings.Contains(value, "$UID") || strings.Contains(value, "$GID") {
		t.Fatalf("expected UID/GID expansion, got %q", value)
	}
	if !strings.HasSuffix(value, "/$MISSING") {
		t.Fatalf("expected missing vars to remain, got %q", value)
	}
}

func TestExpandEnvHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := expandEnv("~/notes"); got != filepath.Join(home, "notes") {
		t.Fatalf("expected home expansion, got %q", got)
	}
}

func TestWriteDefaultRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected path %q, got %q", path, written)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config to exist: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("expected written default to load: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestMarshalRoundTripsThroughLoad(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.VaultDir = "/notes"
	cfg.Assistant.Command = "claude -p '{prompt}'"
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := writeConfig(t, string(data))
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.VaultDir != "/notes" || loaded.Assistant.Command != cfg.Assistant.Command {
		t.Fatalf("unexpected loaded config %+v", loaded)
	}
	if loaded.Assistant.DefaultPrompt != cfg.Assistant.DefaultPrompt {
		t.Fatalf("expected multi-line prompt to survive, got %q", loaded.Assistant.DefaultPrompt)
	}
}
