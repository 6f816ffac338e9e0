package plugin

// PluginType identifies the category of plugin.
type PluginType string

const (
	// PluginTypeTheme provides layouts, assets and branding.
	PluginTypeTheme PluginType = "theme"
)

// IsValid returns true if the plugin type is recognized.
func (t PluginType) IsValid() bool {
	switch t {
	case PluginTypeTheme:
		return true
	default:
		return false
	}
}

// String returns the string representation of the plugin type.
func (t PluginType) String() string {
	return string(t)
}

// Capability names an optional feature a plugin provides.
type Capability string

const (
	CapabilitySearch  Capability = "search"
	CapabilitySitemap Capability = "sitemap"
	CapabilityMermaid Capability = "mermaid"
)
