// Package passthrough copies static assets into the build output verbatim.
package passthrough

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Mapping declares one passthrough copy. Destination is relative to the
// output directory; when empty it is derived from Source.
type Mapping struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination,omitempty"`
}

// IsGlob reports whether the source contains glob metacharacters.
func (m Mapping) IsGlob() bool {
	return strings.ContainsAny(m.Source, "*?[{")
}

// Validate rejects empty, escaping or malformed mappings.
func (m Mapping) Validate() error {
	src := cleanRel(m.Source)
	if src == "" || src == "." {
		return fmt.Errorf("%w: source is required", ErrInvalidMapping)
	}
	if escapes(src) {
		return fmt.Errorf("%w: source %q leaves the project", ErrInvalidMapping, m.Source)
	}
	if m.IsGlob() && !doublestar.ValidatePattern(src) {
		return fmt.Errorf("%w: malformed glob %q", ErrInvalidMapping, m.Source)
	}
	if m.Destination != "" && escapes(cleanRel(m.Destination)) {
		return fmt.Errorf("%w: destination %q leaves the output directory", ErrInvalidMapping, m.Destination)
	}
	return nil
}

// Registry collects passthrough mappings in declaration order.
type Registry struct {
	mappings []Mapping
}

// NewRegistry creates a registry holding the given mappings.
func NewRegistry(mappings ...Mapping) *Registry {
	r := &Registry{}
	for _, m := range mappings {
		r.Add(m)
	}
	return r
}

// Add registers a mapping.
func (r *Registry) Add(m Mapping) {
	r.mappings = append(r.mappings, m)
}

// AddPath registers a source whose destination is derived from its path.
func (r *Registry) AddPath(source string) {
	r.Add(Mapping{Source: source})
}

// Mappings returns a copy of the registered mappings.
func (r *Registry) Mappings() []Mapping {
	out := make([]Mapping, len(r.mappings))
	copy(out, r.mappings)
	return out
}

// Validate checks every mapping.
func (r *Registry) Validate() error {
	for _, m := range r.mappings {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// cleanRel normalises a user-supplied relative path to slash form without "./".
func cleanRel(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	return path.Clean(strings.TrimPrefix(p, "./"))
}

func escapes(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p)
}

// globBase returns the leading path segments of a glob that contain no
// metacharacters, e.g. "node_modules/mermaid/dist" for
// "node_modules/mermaid/dist/**.mjs".
func globBase(pattern string) string {
	base, _ := doublestar.SplitPattern(pattern)
	return base
}
