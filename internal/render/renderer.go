package render

import (
	"bytes"
	"fmt"
	"html/template"
	"maps"

	"github.com/uktrade/docsite/internal/docs"
)

// Engines selects the engine for each kind of template source.
type Engines struct {
	Data     EngineName
	HTML     EngineName
	Markdown EngineName
}

// Renderer renders documents into complete HTML pages.
type Renderer struct {
	data     *Engine
	html     *Engine
	markdown *Engine
	md       *Markdown
	layouts  *Layouts
}

// NewRenderer creates a renderer with the given engines and layouts.
func NewRenderer(engines Engines, layouts *Layouts) (*Renderer, error) {
	data, err := NewEngine(engines.Data)
	if err != nil {
		return nil, fmt.Errorf("data engine: %w", err)
	}
	htmlEngine, err := NewEngine(engines.HTML)
	if err != nil {
		return nil, fmt.Errorf("html engine: %w", err)
	}
	markdown, err := NewEngine(engines.Markdown)
	if err != nil {
		return nil, fmt.Errorf("markdown engine: %w", err)
	}
	return &Renderer{
		data:     data,
		html:     htmlEngine,
		markdown: markdown,
		md:       NewMarkdown(),
		layouts:  layouts,
	}, nil
}

// Layouts returns the renderer's layout set.
func (r *Renderer) Layouts() *Layouts { return r.layouts }

// Output is a rendered page.
type Output struct {
	Page    PageView
	Content []byte // Body HTML before the layout was applied
	HTML    []byte // Complete page
}

// Render produces the full page for d. base carries the site-wide parts of
// the template context; it is copied, never modified.
func (r *Renderer) Render(d *docs.Document, base Context) (*Output, error) {
	ctx := base
	ctx.Page = NewPageView(d)

	fields, err := r.data.ExecuteData(d.Path, d.Data, &ctx)
	if err != nil {
		return nil, err
	}
	ctx.Page.Data = fields
	if title, ok := fields["title"].(string); ok && title != "" {
		ctx.Page.Title = title
	}
	if desc, ok := fields["description"].(string); ok {
		ctx.Page.Description = desc
	}

	content, err := r.Content(d, &ctx)
	if err != nil {
		return nil, err
	}
	ctx.Content = template.HTML(content) //nolint:gosec // produced by our own markdown and template pipeline
	ctx.Page.HasMermaid = HasMermaid(content)
	ctx.Nav = ctx.navFor(ctx.Page)

	layout := d.Layout()
	if layout == "" {
		layout = DefaultLayout
	}
	var buf bytes.Buffer
	if err := r.layouts.Execute(&buf, layout, &ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", d.Path, err)
	}
	return &Output{Page: ctx.Page, Content: content, HTML: buf.Bytes()}, nil
}

// Content expands and converts the page body without applying a layout.
func (r *Renderer) Content(d *docs.Document, ctx *Context) ([]byte, error) {
	switch d.Kind {
	case docs.KindHTML:
		out, err := r.html.Execute(d.Path, string(d.Body), ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Path, err)
		}
		return []byte(out), nil
	default:
		src, err := r.markdown.Execute(d.Path, string(d.Body), ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Path, err)
		}
		out, err := r.md.Convert([]byte(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Path, err)
		}
		return out, nil
	}
}

// RenderVirtual renders a generated page (such as the sitemap) that has no
// source document.
func (r *Renderer) RenderVirtual(layout string, page PageView, base Context) ([]byte, error) {
	ctx := base
	ctx.Page = page
	if ctx.Page.Data == nil {
		ctx.Page.Data = map[string]any{}
	} else {
		ctx.Page.Data = maps.Clone(page.Data)
	}
	var buf bytes.Buffer
	if err := r.layouts.Execute(&buf, layout, &ctx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
