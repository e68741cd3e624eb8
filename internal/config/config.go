package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. DAILYBELL_STORE_PATH.
const EnvPrefix = "DAILYBELL_"

type Config struct {
	Store     StoreConfig     `koanf:"store"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Notify    NotifyConfig    `koanf:"notify"`
	Sound     SoundConfig     `koanf:"sound"`
	Telegram  TelegramConfig  `koanf:"telegram"`
	Log       LogConfig       `koanf:"log"`
	UI        UIConfig        `koanf:"ui"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

type StoreConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type SchedulerConfig struct {
	Interval int `koanf:"interval" validate:"gt=0"` // Seconds between sweeps
}

type NotifyConfig struct {
	Enabled bool   `koanf:"enabled"`
	Title   string `koanf:"title" validate:"required"`
	Timeout int    `koanf:"timeout" validate:"gte=0"` // Seconds the notification stays visible
	Icon    string `koanf:"icon"`
}

type SoundConfig struct {
	Enabled bool   `koanf:"enabled"`
	File    string `koanf:"file"`
	Command string `koanf:"command"` // Player override, file path appended (e.g. "mpv --no-video")
}

type TelegramConfig struct {
	Enabled   bool   `koanf:"enabled"`
	BotToken  string `koanf:"bot_token" validate:"required_if=Enabled true"`
	ChatID    string `koanf:"chat_id" validate:"required_if=Enabled true"`
	BaseURL   string `koanf:"base_url" validate:"omitempty,url"`
	PerMinute int    `koanf:"per_minute" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
	Output string `koanf:"output" validate:"required"` // "stderr", "stdout" or a file path
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"required_if=Enabled true"`
}

// IntervalDuration returns the sweep period.
func (c SchedulerConfig) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// TimeoutDuration returns how long a notification should stay visible.
func (c NotifyConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

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

	// The Bot API credentials are commonly exported without our prefix
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" && k.String("telegram.bot_token") == "" {
		k.Set("telegram.bot_token", token)
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" && k.String("telegram.chat_id") == "" {
		k.Set("telegram.chat_id", chatID)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Sound.File = expandPath(cfg.Sound.File)
	cfg.Notify.Icon = expandPath(cfg.Notify.Icon)
	if !isStream(cfg.Log.Output) {
		cfg.Log.Output = expandPath(cfg.Log.Output)
	}

	return &cfg, nil
}

// envKey maps DAILYBELL_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func isStream(output string) bool {
	return output == "stderr" || output == "stdout"
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
