package collections

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/uktrade/docsite/internal/docs"
	"github.com/uktrade/docsite/internal/logfields"
)

var (
	// ErrInvalidDefinition indicates a collection definition cannot be built.
	ErrInvalidDefinition = errors.New("invalid collection definition")

	// ErrDuplicateName indicates two definitions share a name.
	ErrDuplicateName = errors.New("duplicate collection name")
)

// Definition names a collection and the path globs that select its members.
type Definition struct {
	Name  string   `yaml:"name"`
	Globs []string `yaml:"globs"`
}

// Validate checks the definition has a name and at least one well-formed glob.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if len(d.Globs) == 0 {
		return fmt.Errorf("%w: %s: at least one glob is required", ErrInvalidDefinition, d.Name)
	}
	for _, g := range d.Globs {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("%w: %s: empty glob", ErrInvalidDefinition, d.Name)
		}
		if !doublestar.ValidatePattern(normalizeGlob(g)) {
			return fmt.Errorf("%w: %s: malformed glob %q", ErrInvalidDefinition, d.Name, g)
		}
	}
	return nil
}

// Matches reports whether a document path matches any of the definition's globs.
func (d Definition) Matches(docPath string) bool {
	for _, g := range d.Globs {
		if ok, _ := doublestar.Match(normalizeGlob(g), docPath); ok {
			return true
		}
	}
	return false
}

// Collection is a named, ordered sequence of documents.
type Collection struct {
	Name      string
	Documents []*docs.Document
}

// Len returns the number of documents in the collection.
func (c Collection) Len() int { return len(c.Documents) }

// Build filters documents by the definition's globs and sorts them by
// OrderKey. The input slice is not modified. An empty result is not an error.
func Build(def Definition, documents []*docs.Document) Collection {
	members := make([]*docs.Document, 0)
	for _, d := range documents {
		if def.Matches(d.Path) {
			members = append(members, d)
		}
	}
	slices.SortStableFunc(members, func(a, b *docs.Document) int {
		return compareKeys(OrderKey(a), OrderKey(b))
	})
	return Collection{Name: def.Name, Documents: members}
}

// Set holds the collections registered for one build.
type Set struct {
	names []string
	byKey map[string]Collection
}

// BuildAll validates every definition and builds each collection in
// definition order.
func BuildAll(defs []Definition, documents []*docs.Document) (*Set, error) {
	set := &Set{byKey: make(map[string]Collection, len(defs))}
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, exists := set.byKey[def.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, def.Name)
		}
		c := Build(def, documents)
		set.names = append(set.names, def.Name)
		set.byKey[def.Name] = c
		if c.Len() == 0 {
			slog.Warn("Collection matched no documents", logfields.Collection(def.Name), slog.Any("globs", def.Globs))
			continue
		}
		slog.Debug("Collection built", logfields.Collection(def.Name), logfields.Count(c.Len()))
	}
	return set, nil
}

// Get returns the named collection and whether it exists.
func (s *Set) Get(name string) (Collection, bool) {
	if s == nil {
		return Collection{}, false
	}
	c, ok := s.byKey[name]
	return c, ok
}

// Names returns collection names in registration order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// Map exposes the collections to templates as name → documents.
func (s *Set) Map() map[string][]*docs.Document {
	if s == nil {
		return map[string][]*docs.Document{}
	}
	out := make(map[string][]*docs.Document, len(s.names))
	for _, name := range s.names {
		out[name] = s.byKey[name].Documents
	}
	return out
}

// Counts returns name → document count, used in build reports.
func (s *Set) Counts() map[string]int {
	out := make(map[string]int)
	if s == nil {
		return out
	}
	for _, name := range s.names {
		out[name] = s.byKey[name].Len()
	}
	return out
}

// OrderKey returns the document's numeric `order` front matter value, or 0
// when absent. Numeric strings are parsed; anything else counts as 0.
func OrderKey(d *docs.Document) float64 {
	if d == nil || d.Data == nil {
		return 0
	}
	raw, ok := d.Data["order"]
	if !ok || raw == nil {
		return 0
	}
	switch v := raw.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float64:
		if math.IsNaN(v) {
			return 0
		}
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && !math.IsNaN(f) {
			return f
		}
	}
	slog.Warn("Ignoring non-numeric order value", logfields.Path(d.Path), slog.Any("order", raw))
	return 0
}

func compareKeys(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func normalizeGlob(g string) string {
	return strings.TrimPrefix(strings.TrimSpace(g), "./")
}
