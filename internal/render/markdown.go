package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// mermaidClass marks diagram blocks for the client-side mermaid loader.
const mermaidClass = `<pre class="mermaid">`

// Markdown converts Markdown to HTML with GitHub Flavored Markdown, heading
// anchors and mermaid diagram blocks.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a converter. Raw HTML in documents is kept.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(newMermaidRenderer(), 100)),
		),
	)}
}

// Convert renders src to HTML.
func (m *Markdown) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// HasMermaid reports whether rendered HTML contains a diagram block.
func HasMermaid(rendered []byte) bool {
	return bytes.Contains(rendered, []byte(mermaidClass))
}

// mermaidRenderer emits ```mermaid fences as <pre class="mermaid"> and
// delegates every other fenced block to goldmark's HTML renderer.
type mermaidRenderer struct {
	fallback renderer.NodeRendererFunc
}

type captureFunc struct {
	kind ast.NodeKind
	fn   renderer.NodeRendererFunc
}

func (c *captureFunc) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	if kind == c.kind {
		c.fn = fn
	}
}

func newMermaidRenderer() *mermaidRenderer {
	capture := &captureFunc{kind: ast.KindFencedCodeBlock}
	html.NewRenderer(html.WithUnsafe()).RegisterFuncs(capture)
	return &mermaidRenderer{fallback: capture.fn}
}

func (r *mermaidRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *mermaidRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	if string(n.Language(source)) != "mermaid" {
		return r.fallback(w, source, node, entering)
	}
	if entering {
		_, _ = w.WriteString(mermaidClass)
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			_, _ = w.Write(util.EscapeHTML(line.Value(source)))
		}
	} else {
		_, _ = w.WriteString("</pre>\n")
	}
	return ast.WalkContinue, nil
}
