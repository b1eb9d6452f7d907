package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the environment variable prefix that overrides config keys
// (NIKIAI_VAULT_DIR, NIKIAI_ASSISTANT_COMMAND, ...).
const EnvPrefix = "NIKIAI"

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("vault_dir", cfg.VaultDir)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("assistant.command", cfg.Assistant.Command)
	v.SetDefault("assistant.default_prompt", cfg.Assistant.DefaultPrompt)
	v.SetDefault("assistant.working_dir", cfg.Assistant.WorkingDir)
	v.SetDefault("assistant.timeout_seconds", cfg.Assistant.TimeoutSeconds)
	v.SetDefault("assistant.max_output_bytes", cfg.Assistant.MaxOutputBytes)
	v.SetDefault("panel.include_note", cfg.Panel.IncludeNote)
	v.SetDefault("panel.resume", cfg.Panel.Resume)
	v.SetDefault("panel.picker_limit", cfg.Panel.PickerLimit)
	v.SetDefault("panel.markdown_theme", cfg.Panel.MarkdownTheme)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Assistant.TimeoutSeconds < 0 {
		return fmt.Errorf("assistant.timeout_seconds must not be negative")
	}
	if cfg.Assistant.MaxOutputBytes < 0 {
		return fmt.Errorf("assistant.max_output_bytes must not be negative")
	}
	if cfg.Panel.PickerLimit < 0 {
		return fmt.Errorf("panel.picker_limit must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Panel.MarkdownTheme)) {
	case "", "auto", "dark", "light", "notty", "ascii", "plain":
	default:
		return fmt.Errorf("unsupported panel.markdown_theme %q", cfg.Panel.MarkdownTheme)
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.VaultDir = expandEnv(cfg.VaultDir)
	cfg.StateDir = expandEnv(cfg.StateDir)
	cfg.Assistant.WorkingDir = expandEnv(cfg.Assistant.WorkingDir)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			value = home + value[1:]
		}
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
