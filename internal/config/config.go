package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates levels: EVENTS_STORAGE__PATH sets storage.path.
const EnvPrefix = "EVENTS_"

type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Logger    LoggerConfig    `koanf:"logger"`
	UI        UIConfig        `koanf:"ui"`
}

type StorageConfig struct {
	Path string `koanf:"path"` // events document (default: data/events.json)
}

type SchedulerConfig struct {
	Enabled  bool           `koanf:"enabled"`
	Interval int            `koanf:"interval"` // seconds between reminder sweeps
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

// Configured reports whether reminders should also go to Telegram.
func (t TelegramConfig) Configured() bool {
	return t.BotToken != "" && t.ChatID != ""
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text or json
	Output string `koanf:"output"` // stderr, stdout or a file path
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

// Load builds the configuration from defaults, the optional YAML file at
// configPath and EVENTS_* environment variables, in that order.
//
// A non-empty CI variable disables the reminder scheduler so automated runs
// stay deterministic and finite.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if os.Getenv("CI") != "" {
		if err := k.Set("scheduler.enabled", false); err != nil {
			return nil, fmt.Errorf("failed to disable scheduler for CI: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Path = resolveStoragePath(cfg.Storage.Path)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %d", c.Scheduler.Interval)
	}

	switch c.Logger.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s (supported: text, json)", c.Logger.Format)
	}

	if (c.Scheduler.Telegram.BotToken == "") != (c.Scheduler.Telegram.ChatID == "") {
		return fmt.Errorf("telegram notifications need both bot_token and chat_id")
	}

	return nil
}

// envKey maps EVENTS_SCHEDULER__TELEGRAM__BOT_TOKEN to scheduler.telegram.bot_token.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}

// executableDir anchors relative storage paths. Tests replace it.
var executableDir = func() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// resolveStoragePath makes a relative path relative to the installed binary
// rather than the working directory, so every host started from anywhere
// shares one file. It falls back to the path as given when the binary
// location is unknown.
func resolveStoragePath(path string) string {
	path = expandPath(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	dir, err := executableDir()
	if err != nil {
		return path
	}
	return filepath.Join(dir, path)
}
