package config

import (
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	Hub      HubConfig   `mapstructure:"hub"`
	MQTT     MQTTConfig  `mapstructure:"mqtt"`
	Panel    PanelConfig `mapstructure:"panel"`
	Port     uint        `mapstructure:"port"`
	HttpLog  bool        `mapstructure:"http_log"`
}

type HubConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
	// ProxyBase routes hub requests through a same-origin path instead
	// of the absolute URL, to dodge cross-origin restrictions during
	// development.
	ProxyBase string `mapstructure:"proxy_base"`
}

type PanelConfig struct {
	PollIntervalMillis    uint32 `mapstructure:"poll_interval_millis"`
	PersistDebounceMillis uint32 `mapstructure:"persist_debounce_millis"`
	ApplyDebounceMillis   uint32 `mapstructure:"apply_debounce_millis"`
}

type MQTTConfig struct {
	Enable    bool   `mapstructure:"enable"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	BaseTopic string `mapstructure:"base_topic"`
}

// CheckHubURL validates and normalizes the configured hub base URL.
// An empty URL is allowed: the panel then starts disconnected and
// waits for an explicit connect.
func CheckHubURL(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	trimmed := strings.TrimRight(raw, "/")
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("hub.url must be an absolute http(s) URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("hub.url must use http or https")
	}
	return trimmed, nil
}
