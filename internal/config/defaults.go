package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"store": map[string]interface{}{
			"path": "~/.dailybell/reminders.json",
		},
		"scheduler": map[string]interface{}{
			"interval": 60,
		},
		"notify": map[string]interface{}{
			"enabled": true,
			"title":   "Reminder",
			"timeout": 10,
			"icon":    "~/.dailybell/bell.ico",
		},
		"sound": map[string]interface{}{
			"enabled": true,
			"file":    "~/.dailybell/alarm.mp3",
			"command": "", // empty means autodetect afplay/paplay/aplay/mpg123/ffplay
		},
		"telegram": map[string]interface{}{
			"enabled":    false,
			"bot_token":  "",
			"chat_id":    "",
			"base_url":   "",
			"per_minute": 20,
		},
		"log": map[string]interface{}{
			"level":  "info",
			"format": "console",
			"output": "~/.dailybell/dailybell.log", // keeps the REPL prompt clean
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
		"metrics": map[string]interface{}{
			"enabled": false,
			"addr":    "127.0.0.1:9464",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.dailybell/config.yaml"
}
