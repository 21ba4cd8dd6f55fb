package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
	"github.com/Aman-CERP/lexsearch/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the project can be indexed",
		Long: `Run the checks that gate every indexing run.

Checks:
  - Write permissions in the data directory
  - Disk space (100MB minimum)
  - File descriptor limits (1024 minimum)
  - Indexing lock (no other run in progress)
  - Enumeration source (script, document roots or partition folder)
  - Text extraction for the configured formats

Enumeration problems are warnings: indexing falls back to the existing
partition files.`,
		Example: `  # Run diagnostics
  lexsearch doctor

  # JSON output for scripting
  lexsearch doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(".")
			if err != nil {
				return err
			}
			defer p.Close()

			return p.doctor(cmd.Context(), cmd.OutOrStdout(), verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// doctorReport is the JSON output of doctor.
type doctorReport struct {
	Status string                  `json:"status"`
	Checks []preflight.CheckResult `json:"checks"`
}

func (p *project) doctor(ctx context.Context, out io.Writer, verbose, jsonOutput bool) error {
	checker := preflight.New(p.cfg,
		preflight.WithVerbose(verbose),
		preflight.WithOutput(out),
	)
	results := checker.RunAll(ctx)

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doctorReport{Status: checker.SummaryStatus(results), Checks: results}); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return lexerrors.New(lexerrors.ErrCodeInvalidInput, "system check failed", nil)
	}
	return nil
}

// preflight runs the checks silently before indexing. Warnings are logged;
// the first critical failure aborts the run.
func (p *project) preflight(ctx context.Context) error {
	checker := preflight.New(p.cfg, preflight.WithOutput(io.Discard))
	results := checker.RunAll(ctx)

	for _, r := range results {
		switch {
		case r.IsCritical():
			return preflightError(r)
		case r.Status != preflight.StatusPass:
			p.logger.Warn("preflight_warning",
				slog.String("check", r.Name),
				slog.String("message", r.Message))
		}
	}
	return nil
}

func preflightError(r preflight.CheckResult) error {
	code := lexerrors.ErrCodeIndexIO
	switch r.Name {
	case "index_lock":
		code = lexerrors.ErrCodeIndexLocked
	case "formats":
		code = lexerrors.ErrCodeConfigInvalid
	}
	return lexerrors.New(code, r.Name+": "+r.Message, nil).
		WithSuggestion("Run 'lexsearch doctor' for diagnostics")
}
