package preview

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/uktrade/docsite/internal/config"
	"github.com/uktrade/docsite/internal/logfields"
	"github.com/uktrade/docsite/internal/metrics"
	"github.com/uktrade/docsite/internal/site"
)

// Server serves the output directory with live reload.
type Server struct {
	cfg      *config.Config
	builder  Builder
	hub      *LiveReloadHub
	status   *buildStatus
	recorder metrics.Recorder
	registry *prom.Registry
}

// Option customises a Server.
type Option func(*Server)

// WithRecorder counts rebuilds through r.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Server) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithMetricsRegistry exposes reg at the configured metrics path when
// metrics are enabled.
func WithMetricsRegistry(reg *prom.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// NewServer creates a preview server for cfg, building with b.
func NewServer(cfg *config.Config, b Builder, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		builder:  b,
		hub:      NewLiveReloadHub(),
		status:   &buildStatus{},
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the live reload hub.
func (s *Server) Hub() *LiveReloadHub { return s.hub }

// Handler returns the HTTP routes of the preview server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/livereload", s.hub)
	mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write([]byte(LiveReloadScript)); err != nil {
			slog.Debug("failed to write livereload script", logfields.Error(err))
		}
	})
	if s.registry != nil && s.cfg.Monitoring.Metrics.Enabled {
		mux.Handle(s.cfg.Monitoring.Metrics.Path, metrics.HTTPHandler(s.registry))
	}
	files := http.FileServer(http.Dir(s.cfg.OutputDir()))
	mux.Handle("/", injectScript(s.requireBuild(files), s.status))
	return mux
}

// requireBuild answers 503 until a build has succeeded at least once.
func (s *Server) requireBuild(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.status.good() {
			next.ServeHTTP(w, r)
			return
		}
		msg := "The site has not been built yet."
		if failed, err := s.status.failure(); failed {
			msg = "Build failed: " + err.Error()
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintf(w, "<!DOCTYPE html><html><body><pre>%s</pre>%s</body></html>", html.EscapeString(msg), scriptTag)
	})
}

// BuildResult records a finished build and notifies browsers.
func (s *Server) BuildResult(trigger string, report *site.Report, err error) {
	s.recorder.IncPreviewRebuild(trigger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Warn("Rebuild failed", logfields.Event(trigger), logfields.Error(err))
		s.status.setError(err)
		s.hub.Broadcast("error-" + strconv.FormatInt(time.Now().UnixNano(), 10))
		return
	}
	s.status.setSuccess()
	hash := strconv.FormatInt(time.Now().UnixNano(), 10)
	if report != nil {
		hash = report.BuildID
		slog.Info("Site rebuilt", logfields.BuildID(report.BuildID), slog.String("summary", report.Summary()))
	}
	s.hub.Broadcast(hash)
}

// Run builds the site, then serves it on the configured port until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort("", strconv.Itoa(s.cfg.Preview.Port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	report, err := s.builder.Build(ctx)
	if err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}
	s.BuildResult("initial", report, err)

	rebuilder := NewRebuilder(s.builder, s.cfg.Preview.Debounce, s.BuildResult)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go rebuilder.Run(runCtx)

	watcher, err := NewWatcher([]string{s.cfg.InputDir()}, s.cfg.OutputDir())
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() { _ = watcher.Close() }()
	go watcher.Run(runCtx, func(string) { rebuilder.Request(TriggerWatch) })

	if every := s.cfg.Preview.RebuildInterval; every > 0 {
		sched, err := NewScheduler(every, func() { rebuilder.RequestNow(TriggerSchedule) })
		if err != nil {
			_ = ln.Close()
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       300 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	slog.Info("Preview server listening",
		logfields.URL(fmt.Sprintf("http://localhost:%d", s.cfg.Preview.Port)),
		logfields.Path(s.cfg.OutputDir()))

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("preview server: %w", err)
		}
		return nil
	}

	slog.Info("Shutting down preview server")
	s.hub.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	return nil
}
