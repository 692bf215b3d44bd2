package notify

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines notification configuration. Values come from env vars
// with an optional yaml file override pointed at by NOTIFY_CONFIG.
type Config struct {
	WebhookURL     string        `yaml:"webhook_url"`
	Template       string        `yaml:"template"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Cooldown       time.Duration `yaml:"cooldown"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		WebhookURL:     os.Getenv("NOTIFY_WEBHOOK_URL"),
		RequestTimeout: getenvDurationDefault("NOTIFY_REQUEST_TIMEOUT", 10*time.Second),
		Cooldown:       getenvDurationDefault("NOTIFY_COOLDOWN", 0),
	}

	if path := os.Getenv("NOTIFY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return cfg, nil
}

// Enabled reports whether a channel is configured at all.
func (c Config) Enabled() bool { return c.WebhookURL != "" }

func getenvDurationDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
