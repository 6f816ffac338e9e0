package site

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/uktrade/docsite/internal/collections"
	"github.com/uktrade/docsite/internal/config"
	"github.com/uktrade/docsite/internal/docs"
	foundationerrors "github.com/uktrade/docsite/internal/foundation/errors"
	"github.com/uktrade/docsite/internal/gitinfo"
	"github.com/uktrade/docsite/internal/history"
	"github.com/uktrade/docsite/internal/logfields"
	"github.com/uktrade/docsite/internal/manifest"
	"github.com/uktrade/docsite/internal/metrics"
	"github.com/uktrade/docsite/internal/notify"
	"github.com/uktrade/docsite/internal/passthrough"
	"github.com/uktrade/docsite/internal/plugin"
	"github.com/uktrade/docsite/internal/render"
	"github.com/uktrade/docsite/internal/search"
	"github.com/uktrade/docsite/internal/theme/govuk"
	"github.com/uktrade/docsite/internal/version"
)

// assetsPrefix is where theme assets land inside the output directory.
const assetsPrefix = "assets"

// Generator builds the site described by one configuration.
type Generator struct {
	cfg         *config.Config
	theme       plugin.Theme
	renderer    *render.Renderer
	passthrough *passthrough.Registry
	recorder    metrics.Recorder
	history     history.Store
	publisher   notify.Publisher
	registry    *plugin.Registry
}

// Option customises a Generator.
type Option func(*Generator)

// WithRecorder sets the metrics recorder. Nil keeps the noop recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithHistory records every build in store.
func WithHistory(store history.Store) Option {
	return func(g *Generator) { g.history = store }
}

// WithPublisher publishes every build result.
func WithPublisher(p notify.Publisher) Option {
	return func(g *Generator) {
		if p != nil {
			g.publisher = p
		}
	}
}

// WithRegistry supplies a plugin registry, allowing themes other than the
// bundled govuk theme. When the registry lacks the configured theme the
// govuk theme is registered into it.
func WithRegistry(r *plugin.Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// New resolves the theme, loads layouts and prepares the renderer.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, foundationerrors.ConfigError("configuration is required").Build()
	}
	g := &Generator{
		cfg:       cfg,
		recorder:  metrics.NoopRecorder{},
		publisher: notify.Noop{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.registry == nil {
		g.registry = plugin.NewRegistry()
	}

	theme, err := g.resolveTheme()
	if err != nil {
		return nil, err
	}
	g.theme = theme

	layouts, err := g.loadLayouts()
	if err != nil {
		return nil, err
	}

	g.renderer, err = render.NewRenderer(render.Engines{
		Data:     cfg.Engines.Data,
		HTML:     cfg.Engines.HTML,
		Markdown: cfg.Engines.Markdown,
	}, layouts)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid template engine").Build()
	}

	g.passthrough = passthrough.NewRegistry(cfg.Passthrough...)
	if err := g.passthrough.Validate(); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryValidation, "invalid passthrough mapping").Build()
	}
	return g, nil
}

func (g *Generator) resolveTheme() (plugin.Theme, error) {
	name := g.cfg.Theme.Name
	if name == "" {
		name = govuk.Name
	}
	if name == govuk.Name && !g.registry.Has(govuk.Name) {
		opts, err := g.cfg.Theme.Options.Resolve(g.cfg.Root)
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to resolve theme options").
				WithContext("theme", name).
				Build()
		}
		if err := govuk.Register(g.registry, opts); err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "failed to register theme").Build()
		}
	}
	theme, err := g.registry.Theme(name)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "unknown theme").
			WithContext("theme", name).
			Build()
	}
	if err := theme.Validate(); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryValidation, "invalid theme options").
			WithContext("theme", name).
			Build()
	}
	return theme, nil
}

func (g *Generator) loadLayouts() (*render.Layouts, error) {
	dir := g.cfg.LayoutsDir()
	if dir == "" {
		layouts, err := render.LoadLayouts(g.theme.Layouts())
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryTemplate, "failed to load theme layouts").Build()
		}
		return layouts, nil
	}
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return nil, foundationerrors.ConfigError("layouts directory not found").
			WithContext("path", dir).
			Build()
	}
	layouts, err := render.LoadLayouts(os.DirFS(dir))
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryTemplate, "failed to load layouts").
			WithContext("path", dir).
			Build()
	}
	return layouts, nil
}

// Theme returns the active theme plugin.
func (g *Generator) Theme() plugin.Theme { return g.theme }

// buildState carries data between stages of one build.
type buildState struct {
	cfg      *config.Config
	gen      *Generator
	recorder metrics.Recorder
	report   *Report

	previous  *manifest.BuildManifest
	documents []*docs.Document
	set       *collections.Set
	base      render.Context
	outputs   []*render.Output
	pages     []string
	assets    int
	index     string
	sitemap   string
}

// Build runs every stage and returns the report. The report is returned
// even when the build fails so callers can record the outcome.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	bs := &buildState{
		cfg:      g.cfg,
		gen:      g,
		recorder: g.recorder,
		report:   newReport(uuid.NewString()),
	}
	log := slog.With(logfields.BuildID(bs.report.BuildID))
	log.Info("Build started", logfields.Path(g.cfg.Root), logfields.Theme(g.theme.Metadata().Name))

	if info, err := gitinfo.Lookup(g.cfg.Root); err != nil {
		log.Warn("Git metadata unavailable", logfields.Error(err))
	} else {
		bs.report.GitCommit = info.Commit
		bs.report.GitBranch = info.Branch
	}

	prev, err := manifest.Read(g.cfg.OutputDir())
	if err != nil {
		log.Warn("Ignoring unreadable manifest from previous build", logfields.Error(err))
	}
	bs.previous = prev
	bs.report.FirstBuild = prev == nil

	err = runStages(ctx, bs, []StageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageDiscover, stageDiscover},
		{StageCollections, stageCollections},
		{StageRender, stageRender},
		{StageSearch, stageSearch},
		{StagePassthrough, stagePassthrough},
		{StageManifest, stageManifest},
	})
	g.finish(ctx, bs, err)
	if err != nil {
		return bs.report, bs.report.Err
	}
	return bs.report, nil
}

// finish settles the outcome, then records and publishes it. History and
// notification failures never fail the build.
func (g *Generator) finish(ctx context.Context, bs *buildState, err error) {
	r := bs.report
	r.End = time.Now()
	switch {
	case err == nil:
		r.Outcome = OutcomeSuccess
		g.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		r.Outcome = OutcomeCanceled
		r.Err = err
		g.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
	default:
		r.Outcome = OutcomeFailed
		r.Err = classify(err)
		g.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	}
	g.recorder.ObserveBuildDuration(r.Duration())

	log := slog.With(logfields.BuildID(r.BuildID))
	if r.Err != nil {
		log.Error("Build failed", logfields.Duration(r.Duration()), logfields.Error(r.Err))
	} else {
		log.Info("Build complete", slog.String("summary", r.Summary()))
	}

	// Recording must survive a canceled build context.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if g.history != nil {
		if herr := g.history.Record(recCtx, r.Record()); herr != nil {
			log.Warn("Failed to record build history", logfields.Error(herr))
		}
	}
	if perr := g.publisher.PublishBuild(recCtx, r.Event()); perr != nil {
		log.Warn("Failed to publish build event", logfields.Error(perr))
	}
}

// Discover runs discovery and collection building without writing output.
func (g *Generator) Discover(ctx context.Context) ([]*docs.Document, *collections.Set, error) {
	bs := &buildState{cfg: g.cfg, gen: g, recorder: g.recorder, report: newReport(uuid.NewString())}
	err := runStages(ctx, bs, []StageDef{
		{StageDiscover, stageDiscover},
		{StageCollections, stageCollections},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		return nil, nil, classify(err)
	}
	return bs.documents, bs.set, nil
}

func stagePrepareOutput(_ context.Context, bs *buildState) error {
	out := bs.cfg.OutputDir()
	if bs.cfg.ShouldClean() {
		if err := os.RemoveAll(out); err != nil {
			return fmt.Errorf("clean output directory %s: %w", out, err)
		}
		slog.Debug("Output directory cleaned", logfields.Path(out))
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", out, err)
	}
	return nil
}

func stageDiscover(ctx context.Context, bs *buildState) error {
	skip := []string{bs.cfg.OutputDir()}
	if dir := bs.cfg.LayoutsDir(); dir != "" {
		skip = append(skip, dir)
	}
	documents, err := docs.Scan(ctx, docs.ScanOptions{
		Root:  bs.cfg.Root,
		Input: bs.cfg.Dir.Input,
		Skip:  skip,
	})
	if err != nil {
		return err
	}
	bs.documents = documents
	bs.report.Documents = len(documents)

	if bs.previous != nil {
		added, removed, modified := docs.Changes(bs.previous.Fingerprints(), documents)
		bs.report.Changes = Changes{Added: added, Removed: removed, Modified: modified}
	}
	return nil
}

func stageCollections(_ context.Context, bs *buildState) error {
	set, err := collections.BuildAll(bs.cfg.Collections, bs.documents)
	if err != nil {
		return err
	}
	bs.set = set
	bs.report.CollectionOrder = set.Names()
	for name, n := range set.Counts() {
		bs.report.Collections[name] = n
		bs.recorder.SetCollectionSize(name, n)
	}

	views, names := render.CollectionViews(set)
	all := make([]render.PageView, 0, len(bs.documents))
	for _, d := range bs.documents {
		all = append(all, render.NewPageView(d))
	}
	bs.base = render.Context{
		Collections:     views,
		CollectionNames: names,
		Sitemap:         search.Sitemap(views, names, all),
		Site: render.SiteView{
			Theme:     bs.gen.theme.Globals(),
			BaseURL:   bs.cfg.Build.BaseURL,
			BuildID:   bs.report.BuildID,
			Generator: "docsite " + version.Version,
		},
	}
	return nil
}

func stageRender(ctx context.Context, bs *buildState) error {
	out := bs.cfg.OutputDir()
	outputs := make([]*render.Output, len(bs.documents))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(concurrency(bs.cfg.Build.Concurrency))
	for i, d := range bs.documents {
		if !d.Written() {
			slog.Debug("Page not written", logfields.Path(d.Path))
			continue
		}
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o, err := bs.gen.renderer.Render(d, bs.base)
			if err != nil {
				return err
			}
			if err := writeOutput(out, d.OutputPath, o.HTML); err != nil {
				return fmt.Errorf("%s: %w", d.Path, err)
			}
			outputs[i] = o
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	for i, o := range outputs {
		if o == nil {
			continue
		}
		bs.outputs = append(bs.outputs, o)
		bs.pages = append(bs.pages, bs.documents[i].OutputPath)
	}
	bs.report.Pages = len(bs.outputs)
	bs.recorder.AddPagesRendered(len(bs.outputs))
	slog.Info("Pages rendered", logfields.Count(len(bs.outputs)))
	return nil
}

func stageSearch(_ context.Context, bs *buildState) error {
	out := bs.cfg.OutputDir()
	if p := bs.gen.theme.SearchIndexPath(); p != "" {
		pages := make([]search.Page, 0, len(bs.outputs))
		for _, o := range bs.outputs {
			pages = append(pages, search.Page{
				Title:       o.Page.Title,
				URL:         o.Page.URL,
				Description: o.Page.Description,
				Content:     o.Content,
			})
		}
		entries := search.BuildIndex(pages)
		rel := strings.TrimPrefix(path.Clean(p), "/")
		if err := writeIndex(filepath.Join(out, filepath.FromSlash(rel)), entries); err != nil {
			return fmt.Errorf("write search index %s: %w", rel, err)
		}
		bs.index = rel
		bs.report.SearchEntries = len(entries)
		slog.Debug("Search index written", logfields.Path(rel), logfields.Count(len(entries)))
	}

	if p := bs.gen.theme.SitemapPath(); p != "" {
		if !bs.gen.renderer.Layouts().Has("sitemap") {
			slog.Warn("Sitemap path configured but no sitemap layout available", logfields.URL(p))
			return nil
		}
		url, rel := pagePath(p)
		html, err := bs.gen.renderer.RenderVirtual("sitemap", render.PageView{
			Title: "Sitemap",
			URL:   url,
		}, bs.base)
		if err != nil {
			return fmt.Errorf("render sitemap: %w", err)
		}
		if err := writeOutput(out, rel, html); err != nil {
			return fmt.Errorf("write sitemap %s: %w", rel, err)
		}
		bs.sitemap = rel
	}
	return nil
}

func stagePassthrough(ctx context.Context, bs *buildState) error {
	out := bs.cfg.OutputDir()
	themeAssets, err := passthrough.CopyFS(ctx, bs.gen.theme.Assets(), filepath.Join(out, assetsPrefix))
	if err != nil {
		return fmt.Errorf("copy theme assets: %w", err)
	}
	copier := &passthrough.Copier{Root: bs.cfg.Root, Input: bs.cfg.Dir.Input, Output: out}
	res, err := copier.Copy(ctx, bs.gen.passthrough)
	if err != nil {
		return err
	}
	bs.assets = themeAssets.Files + res.Files
	bs.report.Assets = bs.assets
	bs.recorder.AddAssetsCopied(bs.assets)
	slog.Info("Assets copied", logfields.Count(bs.assets), slog.Int64("bytes", themeAssets.Bytes+res.Bytes))
	return nil
}

func stageManifest(_ context.Context, bs *buildState) error {
	meta := bs.gen.theme.Metadata()
	inputs := make([]manifest.DocumentInput, 0, len(bs.documents))
	for _, d := range bs.documents {
		inputs = append(inputs, manifest.DocumentInput{Path: d.Path, Fingerprint: d.Fingerprint})
	}
	configHash, err := hashConfig(bs.cfg)
	if err != nil {
		return err
	}
	m := &manifest.BuildManifest{
		ID:        bs.report.BuildID,
		Timestamp: bs.report.Start.UTC(),
		Generator: "docsite " + version.Version,
		Inputs: manifest.Inputs{
			GitCommit:   bs.report.GitCommit,
			GitBranch:   bs.report.GitBranch,
			ConfigHash:  configHash,
			ContentHash: docs.SetHash(bs.documents),
			Documents:   inputs,
		},
		Plan: manifest.Plan{
			Theme: meta.Name,
			Engines: map[string]string{
				"data":     string(bs.cfg.Engines.Data),
				"html":     string(bs.cfg.Engines.HTML),
				"markdown": string(bs.cfg.Engines.Markdown),
			},
			Collections: bs.report.Collections,
		},
		Plugins: manifest.Plugins{Theme: &manifest.PluginVersion{
			Name:    meta.Name,
			Version: meta.Version,
			Type:    string(meta.Type),
		}},
		Outputs: manifest.Outputs{
			Pages:       bs.pages,
			Assets:      bs.assets,
			SearchIndex: bs.index,
			Sitemap:     bs.sitemap,
		},
		Status:   string(OutcomeSuccess),
		Duration: time.Since(bs.report.Start).Milliseconds(),
	}
	return manifest.Write(bs.cfg.OutputDir(), m)
}

func hashConfig(cfg *config.Config) (string, error) {
	data, err := config.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config for hash: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func concurrency(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// pagePath maps a URL path to its page URL and output file: "/sitemap"
// becomes "/sitemap/" written to "sitemap/index.html".
func pagePath(p string) (url, rel string) {
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if strings.HasSuffix(clean, ".html") {
		return "/" + clean, clean
	}
	if clean == "" {
		return "/", "index.html"
	}
	return "/" + clean + "/", clean + "/index.html"
}

func writeOutput(outDir, rel string, data []byte) error {
	dst := filepath.Join(outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func writeIndex(dst string, entries []search.Entry) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := search.WriteIndex(f, entries); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
