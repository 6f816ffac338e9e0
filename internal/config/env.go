package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envFiles are loaded in order; earlier files and the process environment win.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env/.env.local without overriding variables that are
// already set. Missing files are ignored.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("Loaded environment variables", slog.String("file", name))
	}
}

// Overrides are DOCSITE_* environment variables that take precedence over
// the configuration file.
type Overrides struct {
	Input       string    `env:"DOCSITE_INPUT"`
	Output      string    `env:"DOCSITE_OUTPUT"`
	BaseURL     string    `env:"DOCSITE_BASE_URL"`
	Concurrency int       `env:"DOCSITE_CONCURRENCY"`
	Clean       *bool     `env:"DOCSITE_CLEAN"`
	HistoryPath string    `env:"DOCSITE_HISTORY_PATH"`
	NATSURL     string    `env:"DOCSITE_NATS_URL"`
	PreviewPort int       `env:"DOCSITE_PREVIEW_PORT"`
	LogLevel    LogLevel  `env:"DOCSITE_LOG_LEVEL"`
	LogFormat   LogFormat `env:"DOCSITE_LOG_FORMAT"`
}

// ReadOverrides parses DOCSITE_* variables from the process environment.
func ReadOverrides() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return Overrides{}, fmt.Errorf("parse environment: %w", err)
	}
	return o, nil
}

func applyEnvOverrides(cfg *Config) error {
	o, err := ReadOverrides()
	if err != nil {
		return err
	}
	if o.Input != "" {
		cfg.Dir.Input = o.Input
	}
	if o.Output != "" {
		cfg.Dir.Output = o.Output
	}
	if o.BaseURL != "" {
		cfg.Build.BaseURL = o.BaseURL
	}
	if o.Concurrency != 0 {
		cfg.Build.Concurrency = o.Concurrency
	}
	if o.Clean != nil {
		cfg.Build.Clean = o.Clean
	}
	if o.HistoryPath != "" {
		cfg.History.Enabled = true
		cfg.History.Path = o.HistoryPath
	}
	if o.NATSURL != "" {
		cfg.Notify.NATSURL = o.NATSURL
	}
	if o.PreviewPort != 0 {
		cfg.Preview.Port = o.PreviewPort
	}
	if o.LogLevel != "" {
		cfg.Monitoring.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Monitoring.Logging.Format = o.LogFormat
	}
	return nil
}
