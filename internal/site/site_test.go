package site

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uktrade/docsite/internal/config"
	foundationerrors "github.com/uktrade/docsite/internal/foundation/errors"
	"github.com/uktrade/docsite/internal/history"
	"github.com/uktrade/docsite/internal/manifest"
	"github.com/uktrade/docsite/internal/notify"
	"github.com/uktrade/docsite/internal/passthrough"
	"github.com/uktrade/docsite/internal/search"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// newProject lays out a project matching the default configuration.
func newProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "docs/index.md", "---\ntitle: Data Workspace\n---\n# Welcome\n")
	writeFile(t, root, "docs/development.md", "---\ntitle: Development\norder: 1\n---\nDev intro\n")
	writeFile(t, root, "docs/deployment.md", "---\ntitle: Deployment\norder: 0\n---\nDeploy intro\n")
	writeFile(t, root, "docs/data-ingestion.md", "---\ntitle: Data ingestion\norder: 2\n---\nIngest\n")
	writeFile(t, root, "docs/deployment/a.md", "---\ntitle: A\norder: 2\n---\nalpha\n")
	writeFile(t, root, "docs/deployment/b.md", "---\ntitle: B\n---\nbravo\n")
	writeFile(t, root, "docs/deployment/c.md", "---\ntitle: C\norder: 1\n---\ncharlie\n")
	writeFile(t, root, "docs/architecture/overview.md", "# Overview\n\n```mermaid\ngraph TD; A-->B\n```\n")
	writeFile(t, root, "docs/assets/dit-logo.svg", `<svg role="img"><title>DBT</title></svg>`)
	writeFile(t, root, "docs/assets/dit-favicon.png", "png")
	writeFile(t, root, "docs/CNAME", "data-workspace.docs.trade.gov.uk\n")
	writeFile(t, root, "docs/development/assets/diagram.png", "png")
	writeFile(t, root, "node_modules/mermaid/dist/mermaid.esm.min.mjs", "export default {}")
	writeFile(t, root, "node_modules/mermaid/dist/mermaid.min.js", "var mermaid")

	cfg := config.Default()
	cfg.Root = root
	return root, cfg
}

func TestBuildDefaultProject(t *testing.T) {
	root, cfg := newProject(t)
	gen, err := New(cfg)
	require.NoError(t, err)

	report, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.True(t, report.FirstBuild)
	assert.Equal(t, 8, report.Documents)
	assert.Equal(t, 8, report.Pages)
	assert.Equal(t, map[string]int{
		"homepage":                     3,
		"deployment":                   3,
		"development":                  0,
		"architecture":                 1,
		"architecture-decision-record": 0,
	}, report.Collections)
	assert.Equal(t, []string{"homepage", "deployment", "development", "architecture", "architecture-decision-record"}, report.CollectionOrder)
	for _, st := range []StageName{StagePrepareOutput, StageDiscover, StageCollections, StageRender, StageSearch, StagePassthrough, StageManifest} {
		assert.Contains(t, report.StageDurations, st)
	}

	out := filepath.Join(root, "_site")
	for _, rel := range []string{
		"index.html",
		"deployment/a/index.html",
		"architecture/overview/index.html",
		"sitemap/index.html",
		"search.json",
		"CNAME",
		"assets/dit-logo.svg",
		"assets/govuk/govuk.css",
		"development/assets/diagram.png",
		"assets/mermaid/mermaid.esm.min.mjs",
		"assets/mermaid/mermaid.min.js",
		manifest.FileName,
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(rel)))
	}

	page, err := os.ReadFile(filepath.Join(out, "deployment", "a", "index.html"))
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "Data Workspace (developer documentation)")
	assert.Contains(t, html, `<svg role="img">`)
	assert.Contains(t, html, "Created by the Department for Business and Trade (DBT)")
	// Section navigation follows the deployment collection order: b(0), c(1), a(2).
	bi := strings.Index(html, `href="/deployment/b/"`)
	ci := strings.Index(html, `href="/deployment/c/"`)
	ai := strings.Index(html, `href="/deployment/a/"`)
	require.True(t, bi >= 0 && ci >= 0 && ai >= 0, "nav links missing")
	assert.Less(t, bi, ci)
	assert.Less(t, ci, ai)

	arch, err := os.ReadFile(filepath.Join(out, "architecture", "overview", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(arch), `<pre class="mermaid">`)
	assert.Contains(t, string(arch), "/assets/mermaid/mermaid.esm.min.mjs")

	data, err := os.ReadFile(filepath.Join(out, "search.json"))
	require.NoError(t, err)
	var entries []search.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 8)

	m, err := manifest.Read(out)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, report.BuildID, m.ID)
	assert.Equal(t, "govuk", m.Plan.Theme)
	assert.Equal(t, "search.json", m.Outputs.SearchIndex)
	assert.Equal(t, "sitemap/index.html", m.Outputs.Sitemap)
	assert.Len(t, m.Inputs.Documents, 8)
}

func TestBuildReportsChangesAgainstPreviousManifest(t *testing.T) {
	root, cfg := newProject(t)
	gen, err := New(cfg)
	require.NoError(t, err)
	_, err = gen.Build(context.Background())
	require.NoError(t, err)

	writeFile(t, root, "docs/deployment/a.md", "---\ntitle: A\norder: 2\n---\nalpha changed\n")
	writeFile(t, root, "docs/deployment/d.md", "new page\n")
	require.NoError(t, os.Remove(filepath.Join(root, "docs", "deployment", "b.md")))

	report, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.False(t, report.FirstBuild)
	assert.Equal(t, []string{"docs/deployment/d.md"}, report.Changes.Added)
	assert.Equal(t, []string{"docs/deployment/b.md"}, report.Changes.Removed)
	assert.Equal(t, []string{"docs/deployment/a.md"}, report.Changes.Modified)
}

func TestBuildFailsOnMissingPassthroughSource(t *testing.T) {
	root, cfg := newProject(t)
	require.NoError(t, os.Remove(filepath.Join(root, "docs", "CNAME")))

	gen, err := New(cfg)
	require.NoError(t, err)
	report, err := gen.Build(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, passthrough.ErrSourceNotFound)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryFileSystem))
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.NotContains(t, report.StageDurations, StageManifest)
}

func TestBuildFailsOnEmptyPassthroughGlob(t *testing.T) {
	root, cfg := newProject(t)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "node_modules")))

	gen, err := New(cfg)
	require.NoError(t, err)
	_, err = gen.Build(context.Background())
	require.ErrorIs(t, err, passthrough.ErrSourceNotFound)
}

func TestEmptyCollectionStillBuilds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/index.md", "home\n")
	cfg := config.Default()
	cfg.Root = root
	cfg.Passthrough = nil
	cfg.Theme.Header.Logotype.File = ""
	cfg.Theme.Header.Logotype.HTML = "<span>DBT</span>"

	gen, err := New(cfg)
	require.NoError(t, err)
	report, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pages)
	for _, n := range report.Collections {
		assert.Zero(t, n)
	}
}

func TestBuildFailsOnMalformedFrontMatter(t *testing.T) {
	root, cfg := newProject(t)
	writeFile(t, root, "docs/deployment/broken.md", "---\ntitle: [unclosed\n---\nbody\n")

	gen, err := New(cfg)
	require.NoError(t, err)
	_, err = gen.Build(context.Background())
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryDiscovery))
	assert.Contains(t, err.Error(), "docs/deployment/broken.md")
}

func TestBuildFailsOnUnknownLayout(t *testing.T) {
	root, cfg := newProject(t)
	writeFile(t, root, "docs/deployment/x.md", "---\nlayout: missing\n---\nbody\n")

	gen, err := New(cfg)
	require.NoError(t, err)
	_, err = gen.Build(context.Background())
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryTemplate))
	assert.Contains(t, err.Error(), "docs/deployment/x.md")
}

func TestNewFailsOnMissingLayoutsDir(t *testing.T) {
	_, cfg := newProject(t)
	cfg.Dir.Layouts = "_layouts"

	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
}

func TestCustomLayoutsDir(t *testing.T) {
	root, cfg := newProject(t)
	cfg.Dir.Layouts = "_layouts"
	writeFile(t, root, "docs/_layouts/page.html", `<p class="custom">{{.Page.Title}}</p>{{.Content}}`)

	gen, err := New(cfg)
	require.NoError(t, err)
	report, err := gen.Build(context.Background())
	require.NoError(t, err)
	// The layouts directory is never treated as content.
	assert.Equal(t, 8, report.Documents)
	// No sitemap layout, so the sitemap is skipped.
	assert.NoFileExists(t, filepath.Join(root, "_site", "sitemap", "index.html"))

	page, err := os.ReadFile(filepath.Join(root, "_site", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<p class="custom">Data Workspace</p>`)
}

func TestPermalinkFalseStaysInCollections(t *testing.T) {
	root, cfg := newProject(t)
	writeFile(t, root, "docs/deployment/draft.md", "---\npermalink: false\norder: -1\n---\ndraft\n")

	gen, err := New(cfg)
	require.NoError(t, err)
	report, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, report.Documents)
	assert.Equal(t, 8, report.Pages)
	assert.Equal(t, 4, report.Collections["deployment"])
	assert.NoDirExists(t, filepath.Join(root, "_site", "deployment", "draft"))
}

func TestBuildCanceled(t *testing.T) {
	_, cfg := newProject(t)
	gen, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := gen.Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeCanceled, report.Outcome)
}

func TestBuildRecordsHistoryAndPublishes(t *testing.T) {
	_, cfg := newProject(t)
	store, err := history.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	pub := &capturePublisher{}

	gen, err := New(cfg, WithHistory(store), WithPublisher(pub))
	require.NoError(t, err)
	report, err := gen.Build(context.Background())
	require.NoError(t, err)

	recent, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, report.BuildID, recent[0].BuildID)
	assert.Equal(t, "success", recent[0].Outcome)

	require.Len(t, pub.events, 1)
	assert.Equal(t, report.BuildID, pub.events[0].BuildID)
	assert.Equal(t, 8, pub.events[0].Pages)
}

func TestDiscover(t *testing.T) {
	root, cfg := newProject(t)
	gen, err := New(cfg)
	require.NoError(t, err)

	documents, set, err := gen.Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, documents, 8)
	c, ok := set.Get("deployment")
	require.True(t, ok)
	var paths []string
	for _, d := range c.Documents {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"docs/deployment/b.md", "docs/deployment/c.md", "docs/deployment/a.md"}, paths)
	assert.NoDirExists(t, filepath.Join(root, "_site"))
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		in, url, rel string
	}{
		{"/sitemap", "/sitemap/", "sitemap/index.html"},
		{"/sitemap/", "/sitemap/", "sitemap/index.html"},
		{"/pages/map.html", "/pages/map.html", "pages/map.html"},
		{"/", "/", "index.html"},
	}
	for _, tt := range tests {
		url, rel := pagePath(tt.in)
		assert.Equal(t, tt.url, url, tt.in)
		assert.Equal(t, tt.rel, rel, tt.in)
	}
}

type capturePublisher struct {
	events []notify.BuildEvent
}

func (p *capturePublisher) PublishBuild(_ context.Context, ev notify.BuildEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error { return nil }
