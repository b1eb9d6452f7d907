package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/nikiai/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int             `mapstructure:"config_version" yaml:"config_version"`
	VaultDir      string          `mapstructure:"vault_dir" yaml:"vault_dir"`
	StateDir      string          `mapstructure:"state_dir" yaml:"state_dir"`
	Assistant     AssistantConfig `mapstructure:"assistant" yaml:"assistant"`
	Panel         PanelConfig     `mapstructure:"panel" yaml:"panel"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// AssistantConfig controls how the assistant binary is invoked.
type AssistantConfig struct {
	// Command is a command line; {prompt} inlines the prompt, otherwise it goes to stdin.
	Command        string `mapstructure:"command" yaml:"command"`
	DefaultPrompt  string `mapstructure:"default_prompt" yaml:"default_prompt"`
	WorkingDir     string `mapstructure:"working_dir" yaml:"working_dir"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxOutputBytes int    `mapstructure:"max_output_bytes" yaml:"max_output_bytes"`
}

// PanelConfig controls the terminal panel.
type PanelConfig struct {
	IncludeNote   bool   `mapstructure:"include_note" yaml:"include_note"`
	Resume        bool   `mapstructure:"resume" yaml:"resume"`
	PickerLimit   int    `mapstructure:"picker_limit" yaml:"picker_limit"`
	MarkdownTheme string `mapstructure:"markdown_theme" yaml:"markdown_theme"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		VaultDir:      "",
		StateDir:      filepath.Join(home, ".nikiai", "state"),
		Assistant: AssistantConfig{
			Command:        "",
			DefaultPrompt:  schema.DefaultSystemPrompt,
			WorkingDir:     "",
			TimeoutSeconds: int(schema.DefaultTimeout / time.Second),
			MaxOutputBytes: schema.DefaultMaxOutputBytes,
		},
		Panel: PanelConfig{
			IncludeNote:   false,
			Resume:        true,
			PickerLimit:   10,
			MarkdownTheme: "auto",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nikiai", "config.yaml"), nil
}

// SessionConfig maps the configuration onto the chat session settings.
func (c Config) SessionConfig() schema.SessionConfig {
	return schema.SessionConfig{
		VaultDir:      c.VaultDir,
		WorkingDir:    c.Assistant.WorkingDir,
		DefaultPrompt: c.Assistant.DefaultPrompt,
		Command:       c.Assistant.Command,
		Timeout:       time.Duration(c.Assistant.TimeoutSeconds) * time.Second,
		MaxOutput:     c.Assistant.MaxOutputBytes,
		StateDir:      c.StateDir,
	}
}
