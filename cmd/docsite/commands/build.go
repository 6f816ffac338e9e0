package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/uktrade/docsite/internal/config"
	"github.com/uktrade/docsite/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output  string `short:"o" help:"Output directory, overriding dir.output"`
	BaseURL string `name:"base-url" help:"Public base URL of the site"`
	NoClean bool   `name:"no-clean" help:"Keep existing files in the output directory"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	b.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, g, cfg)
}

func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Output != "" {
		cfg.Dir.Output = b.Output
	}
	if b.BaseURL != "" {
		cfg.Build.BaseURL = b.BaseURL
	}
	if b.NoClean {
		clean := false
		cfg.Build.Clean = &clean
	}
}

// RunBuild builds the site once and prints the summary.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config) error {
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			slog.Warn("Failed to close build services", logfields.Error(cerr))
		}
	}()

	report, err := rt.gen.Build(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Built %s: %s\n", cfg.OutputDir(), report.Summary())
	for _, name := range report.CollectionOrder {
		_, _ = fmt.Fprintf(g.out(), "  %-30s %d\n", name, report.Collections[name])
	}
	return nil
}
