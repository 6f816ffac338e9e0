package render

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uktrade/docsite/internal/docs"
)

var testLayouts = fstest.MapFS{
	"base.html": {Data: []byte(`{{define "base"}}<html><title>{{.Page.Title}} - {{.Site.Theme.productName}}</title>` +
		`{{range .Nav}}<a href="{{.URL}}">{{.Title}}</a>{{end}}<main>{{block "main" .}}{{.Content}}{{end}}</main></html>{{end}}`)},
	"page.html":    {Data: []byte(`{{template "base" .}}{{define "main"}}<h1>{{.Page.Title}}</h1>{{.Content}}{{end}}`)},
	"sitemap.html": {Data: []byte(`{{template "base" .}}{{define "main"}}{{range .Sitemap}}<h2>{{.Title}}</h2>{{range .Pages}}<li>{{.URL}}</li>{{end}}{{end}}{{end}}`)},
}

func newTestRenderer(t *testing.T, engines Engines) *Renderer {
	t.Helper()
	layouts, err := LoadLayouts(testLayouts)
	require.NoError(t, err)
	r, err := NewRenderer(engines, layouts)
	require.NoError(t, err)
	return r
}

func gotmplEngines() Engines {
	return Engines{Data: EngineGoTemplate, HTML: EngineGoTemplate, Markdown: EngineGoTemplate}
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("")
	require.NoError(t, err)
	assert.Equal(t, EngineGoTemplate, e)

	e, err = ParseEngine(" None ")
	require.NoError(t, err)
	assert.Equal(t, EngineNone, e)

	_, err = ParseEngine("njk")
	require.ErrorIs(t, err, ErrUnknownEngine)
}

func TestEngineExecute(t *testing.T) {
	gotmpl, err := NewEngine(EngineGoTemplate)
	require.NoError(t, err)
	out, err := gotmpl.Execute("x", "Hello {{.Name | upper}}", map[string]string{"Name": "dbt"})
	require.NoError(t, err)
	assert.Equal(t, "Hello DBT", out)

	_, err = gotmpl.Execute("x", "{{.Broken", nil)
	require.ErrorIs(t, err, ErrTemplate)

	none, err := NewEngine(EngineNone)
	require.NoError(t, err)
	out, err = none.Execute("x", "{{.Untouched}}", nil)
	require.NoError(t, err)
	assert.Equal(t, "{{.Untouched}}", out)
}

func TestExecuteDataOnlyTouchesTemplatedStrings(t *testing.T) {
	e, err := NewEngine(EngineGoTemplate)
	require.NoError(t, err)
	in := map[string]any{"title": "About {{.Product}}", "order": 2, "plain": "x"}
	out, err := e.ExecuteData("p.md", in, map[string]string{"Product": "Data Workspace"})
	require.NoError(t, err)
	assert.Equal(t, "About Data Workspace", out["title"])
	assert.Equal(t, 2, out["order"])
	assert.Equal(t, "About {{.Product}}", in["title"])
}

func TestMarkdownGFMAndMermaid(t *testing.T) {
	md := NewMarkdown()
	src := "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n```mermaid\ngraph TD; A-->B\n```\n\n```go\nx := 1\n```\n"
	out, err := md.Convert([]byte(src))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `<pre class="mermaid">graph TD; A--&gt;B`)
	assert.Contains(t, html, `<code class="language-go">`)
	assert.True(t, HasMermaid(out))
}

func TestLoadLayouts(t *testing.T) {
	l, err := LoadLayouts(testLayouts)
	require.NoError(t, err)
	assert.Equal(t, []string{"page", "sitemap"}, l.Names())
	assert.False(t, l.Has("base"))

	_, err = LoadLayouts(fstest.MapFS{"readme.txt": {Data: []byte("x")}})
	require.ErrorIs(t, err, ErrNoLayouts)
}

func TestRenderMarkdownPage(t *testing.T) {
	r := newTestRenderer(t, gotmplEngines())
	doc := &docs.Document{
		Path:  "docs/deployment/aws.md",
		Kind:  docs.KindMarkdown,
		Title: "AWS",
		URL:   "/deployment/aws/",
		Data:  map[string]any{"order": 1},
		Body:  []byte("Deployed by {{.Site.Theme.productName}} to **AWS**.\n"),
	}
	view := NewPageView(doc)
	base := Context{
		Collections:     map[string][]PageView{"deployment": {view}},
		CollectionNames: []string{"deployment"},
		Site:            SiteView{Theme: map[string]any{"productName": "Data Workspace"}},
	}

	out, err := r.Render(doc, base)
	require.NoError(t, err)
	html := string(out.HTML)
	assert.Equal(t, "<p>Deployed by Data Workspace to <strong>AWS</strong>.</p>\n", string(out.Content))
	assert.Contains(t, html, "<title>AWS - Data Workspace</title>")
	assert.Contains(t, html, "<h1>AWS</h1>")
	assert.Contains(t, html, "Deployed by Data Workspace to <strong>AWS</strong>.")
	assert.Contains(t, html, `<a href="/deployment/aws/">AWS</a>`)
	assert.Nil(t, base.Nav)
}

func TestRenderEngineNoneLeavesActions(t *testing.T) {
	r := newTestRenderer(t, Engines{Data: EngineNone, HTML: EngineNone, Markdown: EngineNone})
	doc := &docs.Document{Path: "docs/a.md", Kind: docs.KindMarkdown, Title: "A", Body: []byte("`{{.Page.Title}}`")}
	out, err := r.Render(doc, Context{})
	require.NoError(t, err)
	assert.Contains(t, string(out.HTML), "<code>{{.Page.Title}}</code>")
}

func TestRenderHTMLPage(t *testing.T) {
	r := newTestRenderer(t, gotmplEngines())
	doc := &docs.Document{Path: "docs/x.html", Kind: docs.KindHTML, Title: "X", Body: []byte("<p>{{len .Collections}}</p>")}
	out, err := r.Render(doc, Context{Collections: map[string][]PageView{"a": nil, "b": nil}})
	require.NoError(t, err)
	assert.Contains(t, string(out.HTML), "<p>2</p>")
}

func TestRenderExplicitNavCollection(t *testing.T) {
	r := newTestRenderer(t, gotmplEngines())
	doc := &docs.Document{Path: "docs/index.md", Kind: docs.KindMarkdown, Title: "Home", URL: "/",
		Data: map[string]any{"collection": "homepage"}}
	base := Context{Collections: map[string][]PageView{
		"homepage": {{Title: "Deployment", URL: "/deployment/"}},
	}}
	out, err := r.Render(doc, base)
	require.NoError(t, err)
	assert.Contains(t, string(out.HTML), `<a href="/deployment/">Deployment</a>`)
}

func TestRenderErrorsNameThePath(t *testing.T) {
	r := newTestRenderer(t, gotmplEngines())

	_, err := r.Render(&docs.Document{Path: "docs/bad.md", Kind: docs.KindMarkdown, Body: []byte("{{ .Nope ")}, Context{})
	require.ErrorIs(t, err, ErrTemplate)
	assert.True(t, strings.Contains(err.Error(), "docs/bad.md"))

	_, err = r.Render(&docs.Document{Path: "docs/l.md", Kind: docs.KindMarkdown, Data: map[string]any{"layout": "missing"}}, Context{})
	require.ErrorIs(t, err, ErrLayoutNotFound)
	assert.Contains(t, err.Error(), "docs/l.md")
}

func TestRenderVirtualSitemap(t *testing.T) {
	r := newTestRenderer(t, gotmplEngines())
	out, err := r.RenderVirtual("sitemap", PageView{Title: "Sitemap", URL: "/sitemap/"}, Context{
		Sitemap: []Section{{Name: "deployment", Title: "Deployment", Pages: []PageView{{URL: "/deployment/aws/"}}}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h2>Deployment</h2><li>/deployment/aws/</li>")
}
