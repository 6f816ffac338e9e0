package commands

import (
	"errors"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/uktrade/docsite/internal/config"
	foundationerrors "github.com/uktrade/docsite/internal/foundation/errors"
	"github.com/uktrade/docsite/internal/history"
	"github.com/uktrade/docsite/internal/logfields"
	"github.com/uktrade/docsite/internal/metrics"
	"github.com/uktrade/docsite/internal/notify"
	"github.com/uktrade/docsite/internal/site"
)

// runtime holds the generator and the services it reports to.
type runtime struct {
	gen      *site.Generator
	registry *prom.Registry
	recorder metrics.Recorder
	closers  []func() error
}

// newRuntime wires history, notifications and metrics into a generator as
// the configuration asks. A NATS server that cannot be reached disables
// notifications with a warning instead of failing the command.
func newRuntime(cfg *config.Config) (*runtime, error) {
	rt := &runtime{recorder: metrics.NoopRecorder{}}
	var opts []site.Option

	if cfg.Monitoring.Metrics.Enabled {
		rt.registry = prom.NewRegistry()
		rt.recorder = metrics.NewPrometheusRecorder(rt.registry)
		opts = append(opts, site.WithRecorder(rt.recorder))
	}

	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.HistoryPath())
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryHistory, "failed to open build history").
				WithContext("path", cfg.HistoryPath()).
				Build()
		}
		rt.closers = append(rt.closers, store.Close)
		opts = append(opts, site.WithHistory(store))
	}

	if cfg.Notify.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			slog.Warn("Build notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			rt.closers = append(rt.closers, pub.Close)
			opts = append(opts, site.WithPublisher(pub))
		}
	}

	gen, err := site.New(cfg, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.gen = gen
	return rt, nil
}

// Close releases services in reverse order of opening.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
