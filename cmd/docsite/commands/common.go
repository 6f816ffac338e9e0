// Package commands implements the docsite command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/uktrade/docsite/internal/config"
	foundationerrors "github.com/uktrade/docsite/internal/foundation/errors"
)

// Global is shared state passed to every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer // Command results; logs go to stderr
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docsite.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the documentation site"`
	Discover DiscoverCmd `cmd:"" help:"List discovered pages and collections without building"`
	Preview  PreviewCmd  `cmd:"" help:"Serve the site locally and rebuild on change"`
	Init     InitCmd     `cmd:"" help:"Write a default configuration file"`
	History  HistoryCmd  `cmd:"" help:"Show recent builds"`
}

// AfterApply sets up logging once flags are parsed. -v wins over
// DOCSITE_LOG_LEVEL; the configuration file can lower or raise the level
// later through applyLogging.
func (c *CLI) AfterApply(g *Global) error {
	level, format := config.LogLevelInfo, config.LogFormatText
	if o, err := config.ReadOverrides(); err == nil {
		if o.LogLevel != "" {
			level = config.NormalizeLogLevel(string(o.LogLevel))
		}
		format = config.NormalizeLogFormat(string(o.LogFormat))
	}
	if c.Verbose {
		level = config.LogLevelDebug
	}
	setLogger(g, level, format)
	return nil
}

// applyLogging reapplies logging from the loaded configuration unless -v or
// the environment already chose a level.
func (c *CLI) applyLogging(g *Global, cfg *config.Config) {
	if c.Verbose {
		return
	}
	if o, err := config.ReadOverrides(); err == nil && o.LogLevel != "" {
		return
	}
	setLogger(g, cfg.Monitoring.Logging.Level, cfg.Monitoring.Logging.Format)
}

func setLogger(g *Global, level config.LogLevel, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	var h slog.Handler
	if format == config.LogFormatJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
}

// load reads the configuration named by --config.
func (c *CLI) load(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		if _, ok := foundationerrors.AsClassified(err); ok {
			return nil, err
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "load config").Build()
	}
	c.applyLogging(g, cfg)
	return cfg, nil
}
