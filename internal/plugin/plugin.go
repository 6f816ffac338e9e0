// Package plugin defines the extension points of the site generator.
// A theme plugin supplies layouts, static assets and template globals, and
// declares where the search index and sitemap are published.
package plugin

import (
	"errors"
	"fmt"
	"io/fs"
)

// Plugin represents a docsite plugin with metadata and validation.
type Plugin interface {
	// Metadata returns the plugin's metadata (name, version, type, capabilities).
	Metadata() PluginMetadata

	// Validate checks if the plugin is usable with its configured options.
	Validate() error
}

// Theme is a plugin that provides the presentation of the site.
type Theme interface {
	Plugin

	// Layouts returns the layout templates, one "<name>.html" per layout.
	Layouts() fs.FS

	// Assets returns static files copied to the output under the assets prefix.
	Assets() fs.FS

	// Globals returns data exposed to every template as .Site.Theme.
	Globals() map[string]any

	// SearchIndexPath is the URL path of the generated search index (e.g. "/search.json").
	SearchIndexPath() string

	// SitemapPath is the URL path of the generated sitemap page (e.g. "/sitemap").
	SitemapPath() string
}

// PluginMetadata describes a plugin's identity and capabilities.
type PluginMetadata struct {
	// Name is the unique plugin identifier (e.g., "govuk").
	Name string

	// Version is the semantic version (e.g., "v1.0.0").
	Version string

	// Type identifies the plugin category.
	Type PluginType

	// Description provides a human-readable summary of the plugin's purpose.
	Description string

	// Capabilities lists optional features this plugin provides.
	Capabilities []Capability
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return errors.New("plugin name is required")
	}
	if m.Version == "" {
		return errors.New("plugin version is required")
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}

// Has reports whether the metadata lists the capability.
func (m PluginMetadata) Has(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
