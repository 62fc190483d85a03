package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds everything needed to run the engine.
type AppConfig struct {
	ListenAddr        string        `yaml:"listen_addr"`
	Port              string        `yaml:"port"`
	DatabasePath      string        `yaml:"database_path"`
	GinMode           string        `yaml:"gin_mode"`
	WebhookURL        string        `yaml:"webhook_url"`
	WebhookToken      string        `yaml:"webhook_token"`
	WebhookTimeout    time.Duration `yaml:"-"`
	WebhookTimeoutSec int           `yaml:"webhook_timeout_seconds"`
	EventBufferSize   int           `yaml:"event_buffer_size"`
	GuardRailsEnabled *bool         `yaml:"guard_rails_enabled"`
}

const (
	defaultPort            = "8080"
	defaultDatabasePath    = "kaizenflow.db"
	defaultGinMode         = "release"
	defaultWebhookTimeout  = 10
	defaultEventBufferSize = 64
)

// Load reads CONFIG_FILE when set, then lets environment variables override
// it, then fills defaults for whatever is still missing.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.ListenAddr, "LISTEN_ADDR")
	overrideString(&cfg.DatabasePath, "DATABASE_PATH")
	overrideString(&cfg.GinMode, "GIN_MODE")
	overrideString(&cfg.WebhookURL, "WEBHOOK_URL")
	overrideString(&cfg.WebhookToken, "WEBHOOK_TOKEN")
	if err := overrideInt(&cfg.WebhookTimeoutSec, "WEBHOOK_TIMEOUT_SECONDS"); err != nil {
		return AppConfig{}, err
	}
	if err := overrideInt(&cfg.EventBufferSize, "EVENT_BUFFER_SIZE"); err != nil {
		return AppConfig{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("GUARD_RAILS_ENABLED")); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return AppConfig{}, fmt.Errorf("GUARD_RAILS_ENABLED: %w", err)
		}
		cfg.GuardRailsEnabled = &enabled
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath
	}
	if cfg.GinMode == "" {
		cfg.GinMode = defaultGinMode
	}
	if cfg.WebhookTimeoutSec <= 0 {
		cfg.WebhookTimeoutSec = defaultWebhookTimeout
	}
	cfg.WebhookTimeout = time.Duration(cfg.WebhookTimeoutSec) * time.Second
	if cfg.EventBufferSize <= 0 {
		cfg.EventBufferSize = defaultEventBufferSize
	}
	if cfg.GuardRailsEnabled == nil {
		enabled := true
		cfg.GuardRailsEnabled = &enabled
	}
	return cfg, nil
}

// GuardRails reports whether the guard-rail cron should run.
func (c AppConfig) GuardRails() bool {
	return c.GuardRailsEnabled == nil || *c.GuardRailsEnabled
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}
