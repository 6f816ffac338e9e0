package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uktrade/docsite/internal/logfields"
	"github.com/uktrade/docsite/internal/preview"
)

// PreviewCmd serves the site locally and rebuilds on change.
type PreviewCmd struct {
	Port     int           `short:"p" help:"Port to listen on, overriding preview.port"`
	Metrics  bool          `help:"Expose Prometheus metrics at monitoring.metrics.path"`
	Interval time.Duration `help:"Also rebuild on this interval, overriding preview.rebuild_interval"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	if p.Port != 0 {
		cfg.Preview.Port = p.Port
	}
	if p.Metrics {
		cfg.Monitoring.Metrics.Enabled = true
	}
	if p.Interval > 0 {
		cfg.Preview.RebuildInterval = p.Interval
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			slog.Warn("Failed to close build services", logfields.Error(cerr))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := preview.NewServer(cfg, rt.gen,
		preview.WithRecorder(rt.recorder),
		preview.WithMetricsRegistry(rt.registry))
	return srv.Run(ctx)
}
