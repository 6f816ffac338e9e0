package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	foundationerrors "github.com/uktrade/docsite/internal/foundation/errors"
	"github.com/uktrade/docsite/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" default:"10" help:"Number of builds to show"`
	JSON  bool `help:"Print JSON instead of text"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	store, err := history.NewSQLiteStore(cfg.HistoryPath())
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryHistory, "failed to open build history").
			WithContext("path", cfg.HistoryPath()).
			Build()
	}
	defer func() { _ = store.Close() }()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryHistory, "failed to read build history").Build()
	}
	if h.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(g.out(), "No builds recorded")
		return nil
	}
	for _, r := range records {
		commit := r.GitCommit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		_, _ = fmt.Fprintf(g.out(), "%s  %-8s  %8s  %4d pages  %4d assets  %s %s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Outcome, r.Duration.Round(time.Millisecond),
			r.Pages, r.Assets, r.BuildID, commit)
		if r.Error != "" {
			_, _ = fmt.Fprintf(g.out(), "    %s\n", r.Error)
		}
	}
	return nil
}
