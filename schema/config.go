package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionConfig defines behavior of a chat session.
type SessionConfig struct {
	VaultDir      string
	WorkingDir    string
	DefaultPrompt string
	Command       string
	Timeout       time.Duration
	MaxOutput     int
	StateDir      string
}

const (
	// DefaultTimeout bounds a single assistant invocation.
	DefaultTimeout = 120 * time.Second
	// DefaultMaxOutputBytes caps stdout and stderr of the assistant.
	DefaultMaxOutputBytes = 10 * 1024 * 1024
)

// DefaultSystemPrompt is prepended to every request unless configured otherwise.
const DefaultSystemPrompt = "You are Niki AI embedded in a Markdown notes vault (powered by the Claude CLI). Help me edit Markdown notes.\n" +
	"When you propose changes, be explicit and keep the style consistent."

// NormalizeSessionConfig applies defaults and validates the config.
func NormalizeSessionConfig(cfg SessionConfig) (SessionConfig, error) {
	cfg.VaultDir = strings.TrimSpace(cfg.VaultDir)
	if cfg.VaultDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return SessionConfig{}, err
		}
		cfg.VaultDir = wd
	}
	abs, err := filepath.Abs(cfg.VaultDir)
	if err != nil {
		return SessionConfig{}, err
	}
	cfg.VaultDir = abs
	cfg.WorkingDir = strings.TrimSpace(cfg.WorkingDir)
	cfg.Command = strings.TrimSpace(cfg.Command)
	if cfg.Timeout < 0 {
		return SessionConfig{}, errors.New("timeout must not be negative")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxOutput < 0 {
		return SessionConfig{}, errors.New("max output must not be negative")
	}
	if cfg.MaxOutput == 0 {
		cfg.MaxOutput = DefaultMaxOutputBytes
	}
	return cfg, nil
}

// EffectiveWorkingDir returns the configured working dir, else the vault dir.
func (c SessionConfig) EffectiveWorkingDir() string {
	if c.WorkingDir != "" {
		return c.WorkingDir
	}
	return c.VaultDir
}
