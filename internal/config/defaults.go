package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"storage": map[string]interface{}{
			"path": "data/events.json",
		},
		"scheduler": map[string]interface{}{
			"enabled":  true,
			"interval": 60, // once per minute
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"logger": map[string]interface{}{
			"level":  "info",
			"format": "text",
			"output": "stderr", // stdout carries the MCP protocol
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.event-reminders/config.yaml"
}
