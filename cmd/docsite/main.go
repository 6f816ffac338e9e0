package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/uktrade/docsite/cmd/docsite/commands"
	foundationerrors "github.com/uktrade/docsite/internal/foundation/errors"
	"github.com/uktrade/docsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Out: os.Stdout}
	ctx := kong.Parse(cli,
		kong.Name("docsite"),
		kong.Description("Build the developer documentation site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := ctx.Run(global, cli); err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
