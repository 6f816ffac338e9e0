package govuk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options is the branding and navigation surface of the theme.
type Options struct {
	Icons  Icons  `yaml:"icons"`
	Header Header `yaml:"header"`
	Footer Footer `yaml:"footer"`
}

// Icons configures favicons.
type Icons struct {
	Shortcut string `yaml:"shortcut,omitempty"`
}

// Header configures the site header.
type Header struct {
	Logotype    Logotype `yaml:"logotype"`
	ProductName string   `yaml:"productName,omitempty"`
	Search      Search   `yaml:"search"`
}

// Logotype is inline HTML (usually an SVG) shown in the header. When File is
// set the markup is read from that path, relative to the project root.
type Logotype struct {
	HTML string `yaml:"html,omitempty"`
	File string `yaml:"file,omitempty"`
}

// Search configures where the search index and sitemap are published.
type Search struct {
	IndexPath   string `yaml:"indexPath,omitempty"`
	SitemapPath string `yaml:"sitemapPath,omitempty"`
}

// Footer configures the site footer.
type Footer struct {
	Meta FooterMeta `yaml:"meta"`
}

// FooterMeta holds the footer's secondary links.
type FooterMeta struct {
	Items []FooterItem `yaml:"items,omitempty"`
}

// FooterItem is a single footer link.
type FooterItem struct {
	Href string `yaml:"href"`
	Text string `yaml:"text"`
}

var errLogotypeUnresolved = errors.New("logotype file has not been read")

// Resolve reads the logotype file, if any, into Logotype.HTML.
func (o Options) Resolve(root string) (Options, error) {
	if o.Header.Logotype.File == "" {
		return o, nil
	}
	p := o.Header.Logotype.File
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, filepath.FromSlash(p))
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return o, fmt.Errorf("read logotype %s: %w", o.Header.Logotype.File, err)
	}
	o.Header.Logotype.HTML = string(b)
	o.Header.Logotype.File = ""
	return o, nil
}

// Validate checks paths and footer links.
func (o Options) Validate() error {
	if o.Header.Logotype.File != "" && o.Header.Logotype.HTML == "" {
		return errLogotypeUnresolved
	}
	if p := o.Icons.Shortcut; p != "" && !strings.HasPrefix(p, "/") {
		return fmt.Errorf("icons.shortcut must be an absolute URL path: %q", p)
	}
	if p := o.Header.Search.IndexPath; p != "" {
		if !strings.HasPrefix(p, "/") || !strings.HasSuffix(p, ".json") {
			return fmt.Errorf("search.indexPath must be an absolute path ending in .json: %q", p)
		}
	}
	if p := o.Header.Search.SitemapPath; p != "" && !strings.HasPrefix(p, "/") {
		return fmt.Errorf("search.sitemapPath must be an absolute URL path: %q", p)
	}
	for i, item := range o.Footer.Meta.Items {
		if strings.TrimSpace(item.Href) == "" || strings.TrimSpace(item.Text) == "" {
			return fmt.Errorf("footer.meta.items[%d] needs both href and text", i)
		}
	}
	return nil
}
