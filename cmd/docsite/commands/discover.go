package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/uktrade/docsite/internal/collections"
	"github.com/uktrade/docsite/internal/docs"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	JSON bool `help:"Print JSON instead of text"`
}

// discoveredPage is one page in the discover output.
type discoveredPage struct {
	Path  string  `json:"path"`
	URL   string  `json:"url,omitempty"`
	Title string  `json:"title"`
	Order float64 `json:"order"`
}

type discoverResult struct {
	Documents   int                         `json:"documents"`
	Collections map[string][]discoveredPage `json:"collections"`
	Order       []string                    `json:"collection_order"`
}

func (d *DiscoverCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.load(g)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	documents, set, err := rt.gen.Discover(context.Background())
	if err != nil {
		return err
	}
	res := summarize(documents, set)
	if d.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printDiscover(g.out(), res)
	return nil
}

func summarize(documents []*docs.Document, set *collections.Set) discoverResult {
	res := discoverResult{
		Documents:   len(documents),
		Collections: make(map[string][]discoveredPage),
		Order:       set.Names(),
	}
	for name, members := range set.Map() {
		pages := make([]discoveredPage, 0, len(members))
		for _, m := range members {
			pages = append(pages, discoveredPage{
				Path:  m.Path,
				URL:   m.URL,
				Title: m.Title,
				Order: collections.OrderKey(m),
			})
		}
		res.Collections[name] = pages
	}
	return res
}

func printDiscover(w io.Writer, res discoverResult) {
	_, _ = fmt.Fprintf(w, "%d documents\n", res.Documents)
	for _, name := range res.Order {
		pages := res.Collections[name]
		_, _ = fmt.Fprintf(w, "\n%s (%d)\n", name, len(pages))
		for _, p := range pages {
			_, _ = fmt.Fprintf(w, "  %6s  %-50s %s\n", strconv.FormatFloat(p.Order, 'g', -1, 64), p.Path, p.URL)
		}
	}
}
