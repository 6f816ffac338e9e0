// Package govuk is a theme in the style of the GOV.UK Design System: a
// branded header with product name and search, side navigation built from
// collections, and a footer with meta links.
package govuk

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/uktrade/docsite/internal/plugin"
)

// Name is the registry name of the theme.
const Name = "govuk"

// Version of the bundled layouts and stylesheet.
const Version = "v1.0.0"

//go:embed layouts/*.html
var layoutFiles embed.FS

//go:embed assets
var assetFiles embed.FS

// Theme implements plugin.Theme.
type Theme struct {
	opts Options
}

var _ plugin.Theme = (*Theme)(nil)

// New creates the theme. Options must already be resolved.
func New(opts Options) *Theme {
	return &Theme{opts: opts}
}

// Options returns the theme's options.
func (t *Theme) Options() Options { return t.opts }

func (t *Theme) Metadata() plugin.PluginMetadata {
	caps := []plugin.Capability{plugin.CapabilityMermaid}
	if t.opts.Header.Search.IndexPath != "" {
		caps = append(caps, plugin.CapabilitySearch)
	}
	if t.opts.Header.Search.SitemapPath != "" {
		caps = append(caps, plugin.CapabilitySitemap)
	}
	return plugin.PluginMetadata{
		Name:         Name,
		Version:      Version,
		Type:         plugin.PluginTypeTheme,
		Description:  "GOV.UK Design System styled documentation theme",
		Capabilities: caps,
	}
}

func (t *Theme) Validate() error { return t.opts.Validate() }

func (t *Theme) Layouts() fs.FS {
	sub, _ := fs.Sub(layoutFiles, "layouts")
	return sub
}

func (t *Theme) Assets() fs.FS {
	sub, _ := fs.Sub(assetFiles, "assets")
	return sub
}

func (t *Theme) SearchIndexPath() string { return t.opts.Header.Search.IndexPath }

func (t *Theme) SitemapPath() string { return t.opts.Header.Search.SitemapPath }

// Globals exposes the branding to layouts. The logotype is trusted markup
// from the project's own configuration.
func (t *Theme) Globals() map[string]any {
	items := make([]map[string]string, 0, len(t.opts.Footer.Meta.Items))
	for _, it := range t.opts.Footer.Meta.Items {
		items = append(items, map[string]string{"href": it.Href, "text": it.Text})
	}
	return map[string]any{
		"name":            Name,
		"shortcutIcon":    t.opts.Icons.Shortcut,
		"logotype":        template.HTML(t.opts.Header.Logotype.HTML), //nolint:gosec // configured by the site owner
		"productName":     t.opts.Header.ProductName,
		"searchIndexPath": t.opts.Header.Search.IndexPath,
		"sitemapPath":     t.opts.Header.Search.SitemapPath,
		"footerItems":     items,
		"stylesheet":      "/assets/govuk/govuk.css",
	}
}

// Register adds a theme built from opts to the registry.
func Register(r *plugin.Registry, opts Options) error {
	return r.Register(New(opts))
}
