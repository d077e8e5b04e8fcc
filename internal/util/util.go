package util

import (
	"studiopanel/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Hub: config.HubConfig{
			URL:   "http://hub.test:8123",
			Token: "test-token",
		},
		MQTT: config.MQTTConfig{
			Host: "localhost",
			Port: 1883,
		},
		Panel: config.PanelConfig{
			PollIntervalMillis:    3000,
			PersistDebounceMillis: 500,
			ApplyDebounceMillis:   300,
		},
		Port: 8080,
	}
}
