package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/uktrade/docsite/internal/passthrough"
	"github.com/uktrade/docsite/internal/render"
)

// Validate checks the configuration for values that can never build.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateDirs,
		c.validateEngines,
		c.validateTheme,
		c.validateCollections,
		c.validatePassthrough,
		c.validateServices,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDirs() error {
	if strings.TrimSpace(c.Dir.Input) == "" {
		return errors.New("dir.input is required")
	}
	if strings.TrimSpace(c.Dir.Output) == "" {
		return errors.New("dir.output is required")
	}
	in := filepath.Clean(filepath.FromSlash(c.Dir.Input))
	out := filepath.Clean(filepath.FromSlash(c.Dir.Output))
	if in == out {
		return fmt.Errorf("dir.output must differ from dir.input (%s)", c.Dir.Input)
	}
	if out == "." {
		return errors.New("dir.output cannot be the project root")
	}
	return nil
}

func (c *Config) validateEngines() error {
	for name, e := range map[string]render.EngineName{
		"data":     c.Engines.Data,
		"html":     c.Engines.HTML,
		"markdown": c.Engines.Markdown,
	} {
		if !e.IsValid() {
			return fmt.Errorf("engines.%s: unknown template engine %q (want gotmpl or none)", name, e)
		}
	}
	return nil
}

func (c *Config) validateTheme() error {
	if c.Theme.Name == "" {
		return errors.New("theme.name is required")
	}
	// The logotype file is read when the theme is created, so only static
	// checks apply here.
	opts := c.Theme.Options
	if opts.Header.Logotype.File != "" {
		opts.Header.Logotype.HTML = "pending"
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	return nil
}

func (c *Config) validateCollections() error {
	seen := make(map[string]struct{}, len(c.Collections))
	for i, def := range c.Collections {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("collections[%d]: %w", i, err)
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("collections[%d]: duplicate collection name %q", i, def.Name)
		}
		seen[def.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validatePassthrough() error {
	reg := passthrough.NewRegistry(c.Passthrough...)
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("passthrough: %w", err)
	}
	return nil
}

func (c *Config) validateServices() error {
	if c.Build.Concurrency < 0 {
		return fmt.Errorf("build.concurrency must not be negative: %d", c.Build.Concurrency)
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return fmt.Errorf("preview.port out of range: %d", c.Preview.Port)
	}
	if c.Preview.RebuildInterval < 0 {
		return errors.New("preview.rebuild_interval must not be negative")
	}
	if c.Monitoring.Metrics.Path != "" && !strings.HasPrefix(c.Monitoring.Metrics.Path, "/") {
		return fmt.Errorf("monitoring.metrics.path must start with '/': %q", c.Monitoring.Metrics.Path)
	}
	return nil
}
