package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dailybell", "reminders.json"), cfg.Store.Path)
	assert.Equal(t, 60*time.Second, cfg.Scheduler.IntervalDuration())
	assert.Equal(t, 10*time.Second, cfg.Notify.TimeoutDuration())
	assert.Equal(t, "Reminder", cfg.Notify.Title)
	assert.True(t, cfg.Notify.Enabled)
	assert.True(t, cfg.Sound.Enabled)
	assert.False(t, cfg.Telegram.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.UI.ColoredOutput)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  path: /tmp/reminders-from-file.json
scheduler:
  interval: 30
notify:
  title: Bell
log:
  level: debug
  output: stderr
`), 0o644))

	t.Setenv("DAILYBELL_SCHEDULER_INTERVAL", "15")
	t.Setenv("DAILYBELL_UI_COLORED_OUTPUT", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "987")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/reminders-from-file.json", cfg.Store.Path)
	assert.Equal(t, 15, cfg.Scheduler.Interval, "env beats file")
	assert.Equal(t, "Bell", cfg.Notify.Title)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.False(t, cfg.UI.ColoredOutput)
	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "987", cfg.Telegram.ChatID)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero interval", func(c *Config) { c.Scheduler.Interval = 0 }, "Interval"},
		{"empty store path", func(c *Config) { c.Store.Path = "" }, "Path"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true }, "BotToken"},
		{"telegram complete", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = "t"
			c.Telegram.ChatID = "c"
		}, ""},
		{"bad telegram url", func(c *Config) { c.Telegram.BaseURL = "not a url" }, "BaseURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "store.path", envKey("DAILYBELL_STORE_PATH"))
	assert.Equal(t, "ui.colored_output", envKey("DAILYBELL_UI_COLORED_OUTPUT"))
	assert.Equal(t, "telegram.per_minute", envKey("DAILYBELL_TELEGRAM_PER_MINUTE"))
}
