package cmd

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexsearch/internal/logging"
	"github.com/Aman-CERP/lexsearch/internal/output"
	"github.com/Aman-CERP/lexsearch/internal/search"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit  int
	format string // "text", "json"
	scores bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index",
		Long: `Search the index by keyword overlap.

Keywords are extracted from the query the same way they are extracted
from documents. Each document scores one point per query keyword found
among its keywords; results are ordered by score, then by path.`,
		Example: `  lexsearch search "supply chain risk"
  lexsearch search contract renewal --limit 5 --scores
  lexsearch search "annual report" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(".")
			if err != nil {
				return err
			}
			defer p.Close()

			return p.search(cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default search.max_results, 0 for all)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.scores, "scores", false, "Show the overlap score of each result")

	return cmd
}

func (p *project) search(out io.Writer, query string, opts searchOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	st, err := p.store()
	if err != nil {
		return err
	}
	idx, err := st.Load()
	if err != nil {
		return err
	}

	engine := search.New(idx,
		search.WithCacheSize(p.cfg.Search.CacheSize),
		search.WithMetrics(p.metrics),
		search.WithLogger(logging.WithComponent(p.logger, "search")))

	limit := opts.limit
	if limit <= 0 {
		limit = p.cfg.Search.MaxResults
	}

	hits := engine.Hits(query, limit)
	p.logger.Info("search_complete",
		slog.String("query", query),
		slog.Int("documents", engine.Len()),
		slog.Int("results", len(hits)))

	return output.New(out).SearchResults(query, hits, output.ResultOptions{
		Format: format,
		Scores: opts.scores,
	})
}
