// Package config loads the docsite.yaml project configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uktrade/docsite/internal/collections"
	foundationerrors "github.com/uktrade/docsite/internal/foundation/errors"
	"github.com/uktrade/docsite/internal/passthrough"
	"github.com/uktrade/docsite/internal/render"
	"github.com/uktrade/docsite/internal/theme/govuk"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "docsite.yaml"

// Config represents the project configuration.
type Config struct {
	Dir         DirConfig                `yaml:"dir"`
	Engines     EngineConfig             `yaml:"engines"`
	Theme       ThemeConfig              `yaml:"theme"`
	Collections []collections.Definition `yaml:"collections,omitempty"`
	Passthrough []passthrough.Mapping    `yaml:"passthrough,omitempty"`
	Build       BuildConfig              `yaml:"build"`
	History     HistoryConfig            `yaml:"history"`
	Notify      NotifyConfig             `yaml:"notify,omitempty"`
	Preview     PreviewConfig            `yaml:"preview"`
	Monitoring  MonitoringConfig         `yaml:"monitoring"`

	// Root is the directory relative paths resolve against: the directory
	// holding the configuration file.
	Root string `yaml:"-"`
}

// DirConfig locates the input, output and layouts directories.
type DirConfig struct {
	Input  string `yaml:"input"`  // Relative to Root
	Output string `yaml:"output"` // Relative to Root
	// Layouts is relative to Input. Empty uses the theme's bundled layouts.
	Layouts string `yaml:"layouts,omitempty"`
}

// EngineConfig selects the template engine per source kind.
type EngineConfig struct {
	Data     render.EngineName `yaml:"data"`
	HTML     render.EngineName `yaml:"html"`
	Markdown render.EngineName `yaml:"markdown"`
}

// ThemeConfig selects the theme plugin and carries its options.
type ThemeConfig struct {
	Name          string `yaml:"name"`
	govuk.Options `yaml:",inline"`
}

// BuildConfig controls the generator run.
type BuildConfig struct {
	Clean       *bool  `yaml:"clean,omitempty"` // Clean output directory before build (default true)
	Concurrency int    `yaml:"concurrency,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// HistoryConfig configures the build history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Relative to Root
}

// NotifyConfig configures build notifications over NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Port            int           `yaml:"port"`
	Debounce        time.Duration `yaml:"debounce"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"` // Zero disables periodic rebuilds
}

// MonitoringConfig represents metrics and logging configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// ShouldClean reports whether the output directory is emptied before a build.
func (c *Config) ShouldClean() bool {
	return c.Build.Clean == nil || *c.Build.Clean
}

// InputDir returns the absolute input directory.
func (c *Config) InputDir() string { return c.resolve(c.Dir.Input) }

// OutputDir returns the absolute output directory.
func (c *Config) OutputDir() string { return c.resolve(c.Dir.Output) }

// LayoutsDir returns the absolute layouts directory, "" for theme layouts.
func (c *Config) LayoutsDir() string {
	if c.Dir.Layouts == "" {
		return ""
	}
	if filepath.IsAbs(c.Dir.Layouts) {
		return c.Dir.Layouts
	}
	return filepath.Join(c.InputDir(), filepath.FromSlash(c.Dir.Layouts))
}

// HistoryPath returns the absolute history database path.
func (c *Config) HistoryPath() string { return c.resolve(c.History.Path) }

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// Load reads, expands, overrides, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, foundationerrors.ConfigError(fmt.Sprintf("configuration file not found: %s (run `docsite init` to create one)", configPath)).
				WithContext("path", configPath).
				Build()
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to parse config file").
			WithContext("path", configPath).
			Fatal().
			Build()
	}

	root, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to resolve project root").Build()
	}
	cfg.Root = root

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid DOCSITE_* environment override").Build()
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryValidation, "configuration validation failed").
			WithContext("path", configPath).
			Fatal().
			Build()
	}
	return cfg, nil
}

// Parse decodes YAML after expanding ${VAR} references. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Init writes the default configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return foundationerrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			Build()
	}

	data, err := Marshal(Default())
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return foundationerrors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// Marshal encodes cfg as YAML with two-space indentation.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# docsite project configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
