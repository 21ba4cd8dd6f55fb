package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexsearch/internal/autocomplete"
	"github.com/Aman-CERP/lexsearch/internal/output"
	"github.com/Aman-CERP/lexsearch/internal/store"
)

// completeOptions holds CLI flags for complete.
type completeOptions struct {
	limit  int
	format string
	apply  bool
}

func newCompleteCmd() *cobra.Command {
	var opts completeOptions

	cmd := &cobra.Command{
		Use:   "complete <partial query>",
		Short: "Suggest completions for the last word of a query",
		Long: `Suggest autocomplete words for the last word of a partial query.

Suggestions come from the autocomplete vocabulary saved by 'lexsearch
index'. When the vocabulary file is missing it is rebuilt from the index.`,
		Example: `  lexsearch complete "annual rep"
  lexsearch complete "annual rep" --apply`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(".")
			if err != nil {
				return err
			}
			defer p.Close()

			return p.complete(cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of suggestions (default autocomplete.suggestions)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Print the query completed with the first suggestion")

	return cmd
}

func (p *project) complete(out io.Writer, input string, opts completeOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	vocabulary, err := p.vocabulary()
	if err != nil {
		return err
	}

	limit := opts.limit
	if limit <= 0 {
		limit = p.cfg.Autocomplete.Suggestions
	}
	words := autocomplete.NewCompleter(vocabulary).Complete(input, limit)

	if opts.apply {
		if len(words) == 0 {
			_, err := fmt.Fprintln(out, input)
			return err
		}
		_, err := fmt.Fprintln(out, autocomplete.Apply(input, words[0]))
		return err
	}
	return output.New(out).Completions(words, format)
}

// vocabulary loads the autocomplete vocabulary, rebuilding it from the index
// when the vocabulary file does not exist.
func (p *project) vocabulary() ([]string, error) {
	words, err := store.LoadVocabulary(p.cfg.Output.AutocompletePath)
	if err == nil {
		return words, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	p.logger.Info("vocabulary_missing_rebuilding", slog.String("path", p.cfg.Output.AutocompletePath))
	st, err := p.store()
	if err != nil {
		return nil, err
	}
	idx, err := st.Load()
	if err != nil {
		return nil, err
	}
	return autocomplete.Build(idx, p.cfg.Autocomplete.Size), nil
}
