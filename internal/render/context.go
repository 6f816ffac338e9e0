package render

import (
	"html/template"

	"github.com/uktrade/docsite/internal/collections"
	"github.com/uktrade/docsite/internal/docs"
)

// PageView is the template-facing view of a document.
type PageView struct {
	Title       string
	Description string
	URL         string
	Path        string
	Order       float64
	Data        map[string]any
	HasMermaid  bool
}

// NewPageView projects a document for templates.
func NewPageView(d *docs.Document) PageView {
	return PageView{
		Title:       d.Title,
		Description: d.Description(),
		URL:         d.URL,
		Path:        d.Path,
		Order:       collections.OrderKey(d),
		Data:        d.Data,
	}
}

// SiteView carries site-wide data.
type SiteView struct {
	Theme     map[string]any
	BaseURL   string
	BuildID   string
	Generator string
}

// Section is a titled group of pages, used by the sitemap.
type Section struct {
	Name  string
	Title string
	Pages []PageView
}

// Context is the data every template executes against.
type Context struct {
	Page    PageView
	Content template.HTML
	// Collections maps collection name to its ordered pages.
	Collections map[string][]PageView
	// CollectionNames lists collections in declaration order.
	CollectionNames []string
	// Nav is the collection shown as section navigation for this page.
	Nav     []PageView
	Sitemap []Section
	Site    SiteView
}

// CollectionViews projects a collection set, preserving declaration order.
func CollectionViews(set *collections.Set) (map[string][]PageView, []string) {
	names := set.Names()
	views := make(map[string][]PageView, len(names))
	for _, name := range names {
		c, _ := set.Get(name)
		pages := make([]PageView, 0, c.Len())
		for _, d := range c.Documents {
			pages = append(pages, NewPageView(d))
		}
		views[name] = pages
	}
	return views, names
}

// navFor picks the section navigation: the front-matter "collection" when
// set, otherwise the first collection that contains the page.
func (c Context) navFor(page PageView) []PageView {
	if name, ok := page.Data["collection"].(string); ok && name != "" {
		return c.Collections[name]
	}
	for _, name := range c.CollectionNames {
		for _, p := range c.Collections[name] {
			if p.Path == page.Path {
				return c.Collections[name]
			}
		}
	}
	return nil
}
