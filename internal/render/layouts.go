package render

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// baseLayout is the shared skeleton other layouts extend via {{template "base" .}}.
const baseLayout = "base.html"

// DefaultLayout is used when a page does not set one.
const DefaultLayout = "page"

// Layouts is a set of html/template layouts keyed by name ("page" for page.html).
type Layouts struct {
	templates map[string]*template.Template
}

// LoadLayouts parses every *.html file at the root of fsys. When base.html is
// present it is parsed into each layout so layouts can extend it.
func LoadLayouts(fsys fs.FS) (*Layouts, error) {
	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	hasBase := slices.Contains(files, baseLayout)

	l := &Layouts{templates: make(map[string]*template.Template)}
	for _, file := range files {
		if file == baseLayout {
			continue
		}
		patterns := []string{file}
		if hasBase {
			patterns = []string{baseLayout, file}
		}
		t, err := template.New(file).Funcs(htmlFuncs()).ParseFS(fsys, patterns...)
		if err != nil {
			return nil, fmt.Errorf("%w: layout %s: %w", ErrTemplate, file, err)
		}
		l.templates[strings.TrimSuffix(file, path.Ext(file))] = t
	}
	if len(l.templates) == 0 {
		return nil, ErrNoLayouts
	}
	return l, nil
}

// Has reports whether a layout exists.
func (l *Layouts) Has(name string) bool {
	_, ok := l.templates[name]
	return ok
}

// Names returns the layout names in sorted order.
func (l *Layouts) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute renders the named layout.
func (l *Layouts) Execute(w io.Writer, name string, ctx *Context) error {
	t, ok := l.templates[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	if err := t.Execute(w, ctx); err != nil {
		return fmt.Errorf("%w: layout %s: %w", ErrTemplate, name, err)
	}
	return nil
}

func htmlFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"title": func(s string) string {
			return cases.Title(language.BritishEnglish).String(s)
		},
	}
}
