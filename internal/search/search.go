// Package search builds the client-side search index and the sitemap.
package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/uktrade/docsite/internal/render"
)

// Entry is one record of the search index.
type Entry struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

// Page is a rendered page offered to the index.
type Page struct {
	Title       string
	URL         string
	Description string
	Content     []byte // Page body HTML without the layout
}

// BuildIndex creates index entries in page order. Pages without a URL are
// not published and are skipped.
func BuildIndex(pages []Page) []Entry {
	entries := make([]Entry, 0, len(pages))
	for _, p := range pages {
		if p.URL == "" {
			continue
		}
		entries = append(entries, Entry{
			Title:       p.Title,
			URL:         p.URL,
			Description: p.Description,
			Content:     ExtractText(p.Content),
		})
	}
	return entries
}

// WriteIndex encodes entries as a JSON array.
func WriteIndex(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode search index: %w", err)
	}
	return nil
}

// skipText lists elements whose text never belongs in the index.
var skipText = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
	atom.Svg:      true,
}

// ExtractText returns the visible text of an HTML fragment with whitespace collapsed.
func ExtractText(fragment []byte) string {
	z := html.NewTokenizer(bytes.NewReader(fragment))
	var b strings.Builder
	depth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if skipText[atom.Lookup(name)] {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipText[atom.Lookup(name)] && depth > 0 {
				depth--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if depth == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// Sitemap groups published pages by collection in declaration order, then
// lists every remaining page under "Other pages" sorted by URL.
func Sitemap(collections map[string][]render.PageView, names []string, all []render.PageView) []render.Section {
	listed := make(map[string]bool)
	sections := make([]render.Section, 0, len(names)+1)
	for _, name := range names {
		var pages []render.PageView
		for _, p := range collections[name] {
			if p.URL == "" {
				continue
			}
			pages = append(pages, p)
			listed[p.URL] = true
		}
		if len(pages) == 0 {
			continue
		}
		sections = append(sections, render.Section{Name: name, Title: SectionTitle(name), Pages: pages})
	}

	var rest []render.PageView
	for _, p := range all {
		if p.URL == "" || listed[p.URL] {
			continue
		}
		rest = append(rest, p)
	}
	if len(rest) > 0 {
		slices.SortFunc(rest, func(a, b render.PageView) int { return strings.Compare(a.URL, b.URL) })
		sections = append(sections, render.Section{Name: "other", Title: "Other pages", Pages: rest})
	}
	return sections
}

// SectionTitle turns a collection name such as "architecture-decision-record"
// into "Architecture Decision Record".
func SectionTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	return cases.Title(language.BritishEnglish).String(strings.Join(words, " "))
}
