package config

import (
	"time"

	"github.com/uktrade/docsite/internal/collections"
	"github.com/uktrade/docsite/internal/passthrough"
	"github.com/uktrade/docsite/internal/render"
	"github.com/uktrade/docsite/internal/theme/govuk"
)

const (
	defaultInput           = "docs"
	defaultOutput          = "_site"
	defaultTheme           = govuk.Name
	defaultHistoryPath     = ".docsite/history.db"
	defaultNotifySubject   = "docsite.builds"
	defaultPreviewPort     = 8080
	defaultPreviewDebounce = 300 * time.Millisecond
	defaultMetricsPath     = "/metrics"
)

// Default returns the configuration of the Data Workspace developer
// documentation site.
func Default() *Config {
	clean := true
	cfg := &Config{
		Dir: DirConfig{Input: defaultInput, Output: defaultOutput},
		Engines: EngineConfig{
			Data:     render.EngineGoTemplate,
			HTML:     render.EngineGoTemplate,
			Markdown: render.EngineGoTemplate,
		},
		Theme: ThemeConfig{
			Name: defaultTheme,
			Options: govuk.Options{
				Icons: govuk.Icons{Shortcut: "/assets/dit-favicon.png"},
				Header: govuk.Header{
					Logotype:    govuk.Logotype{File: "./docs/assets/dit-logo.svg"},
					ProductName: "Data Workspace (developer documentation)",
					Search:      govuk.Search{IndexPath: "/search.json", SitemapPath: "/sitemap"},
				},
				Footer: govuk.Footer{Meta: govuk.FooterMeta{Items: []govuk.FooterItem{
					{
						Href: "https://github.com/uktrade/data-workspace",
						Text: "Data Workspace GitHub repository",
					},
					{
						Href: "https://www.gov.uk/government/organisations/department-for-business-and-trade",
						Text: "Created by the Department for Business and Trade (DBT)",
					},
				}}},
			},
		},
		Collections: DefaultCollections(),
		Passthrough: DefaultPassthrough(),
		Build:       BuildConfig{Clean: &clean},
		History:     HistoryConfig{Path: defaultHistoryPath},
		Preview:     PreviewConfig{Port: defaultPreviewPort, Debounce: defaultPreviewDebounce},
		Monitoring: MonitoringConfig{
			Metrics: MonitoringMetrics{Path: defaultMetricsPath},
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
		},
	}
	return cfg
}

// DefaultCollections returns the five navigation collections of the site.
func DefaultCollections() []collections.Definition {
	return []collections.Definition{
		{Name: "homepage", Globs: []string{"docs/development.md", "docs/deployment.md", "docs/data-ingestion.md"}},
		{Name: "deployment", Globs: []string{"docs/deployment/*.md"}},
		{Name: "development", Globs: []string{"docs/development/*.md"}},
		{Name: "architecture", Globs: []string{"docs/architecture/*.md"}},
		{Name: "architecture-decision-record", Globs: []string{"docs/architecture-decision-record/*.md"}},
	}
}

// DefaultPassthrough returns the static assets copied verbatim, including
// the mermaid runtime from node_modules.
func DefaultPassthrough() []passthrough.Mapping {
	return []passthrough.Mapping{
		{Source: "./docs/assets"},
		{Source: "./docs/CNAME"},
		{Source: "./docs/development/assets"},
		{Source: "./node_modules/mermaid/dist/**.mjs", Destination: "assets/mermaid"},
		{Source: "./node_modules/mermaid/dist/**.js", Destination: "assets/mermaid"},
	}
}

// applyDefaults fills unset scalar settings. Collections and passthrough
// mappings are never defaulted: an empty list means none.
func applyDefaults(cfg *Config) {
	if cfg.Dir.Input == "" {
		cfg.Dir.Input = defaultInput
	}
	if cfg.Dir.Output == "" {
		cfg.Dir.Output = defaultOutput
	}
	if cfg.Engines.Data == "" {
		cfg.Engines.Data = render.EngineGoTemplate
	}
	if cfg.Engines.HTML == "" {
		cfg.Engines.HTML = render.EngineGoTemplate
	}
	if cfg.Engines.Markdown == "" {
		cfg.Engines.Markdown = render.EngineGoTemplate
	}
	if cfg.Theme.Name == "" {
		cfg.Theme.Name = defaultTheme
	}
	if cfg.Build.Concurrency < 0 {
		cfg.Build.Concurrency = 0
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath
	}
	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = defaultNotifySubject
	}
	if cfg.Preview.Port == 0 {
		cfg.Preview.Port = defaultPreviewPort
	}
	if cfg.Preview.Debounce <= 0 {
		cfg.Preview.Debounce = defaultPreviewDebounce
	}
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = defaultMetricsPath
	}
	cfg.Monitoring.Logging.Level = NormalizeLogLevel(string(cfg.Monitoring.Logging.Level))
	cfg.Monitoring.Logging.Format = NormalizeLogFormat(string(cfg.Monitoring.Logging.Format))
}
