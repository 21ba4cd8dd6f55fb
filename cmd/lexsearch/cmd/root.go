// Package cmd provides the CLI commands for lexsearch.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexsearch/internal/profiling"
	"github.com/Aman-CERP/lexsearch/pkg/version"
)

// Profiling flags
var (
	profileOpts profiling.Options
	profiler    *profiling.Session
)

// Global flags
var (
	debugMode bool
	noColor   bool
)

// NewRootCmd creates the root command for the lexsearch CLI.
func NewRootCmd() *cobra.Command {
	var noTUI bool

	cmd := &cobra.Command{
		Use:   "lexsearch",
		Short: "Keyword index and search for local PDF and DOCX documents",
		Long: `lexsearch indexes local documents by their keywords and searches them
by keyword overlap.

Documents are listed into partition files (by a script or the built-in
walker), read in parallel, reduced to their top keywords and saved to
output.json. An autocomplete vocabulary is saved next to it.

Run 'lexsearch' in a project directory: with an index present it shows
the index status, otherwise it builds the index first.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runSmartDefault(cmd.Context(), cmd, noTUI)
		},
	}

	cmd.SetVersionTemplate("lexsearch version {{.Version}}\n")

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Use plain text progress output when indexing")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to stderr and the log file")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startProfiling
	cmd.PersistentPostRunE = stopProfiling

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newCompleteCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startProfiling(_ *cobra.Command, _ []string) error {
	if !profileOpts.Enabled() {
		return nil
	}
	s, err := profiling.Start(profileOpts)
	if err != nil {
		return err
	}
	profiler = s
	return nil
}

func stopProfiling(_ *cobra.Command, _ []string) error {
	if profiler == nil {
		return nil
	}
	err := profiler.Stop()
	profiler = nil
	if err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// runSmartDefault shows the status of an existing index, or builds the index
// when there is none.
func runSmartDefault(ctx context.Context, cmd *cobra.Command, noTUI bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := openProject(".")
	if err != nil {
		return err
	}
	defer p.Close()

	if fileExists(p.cfg.Output.IndexPath) {
		p.logger.Debug("index_found", slog.String("path", p.cfg.Output.IndexPath))
		return p.status(ctx, cmd.OutOrStdout(), false)
	}

	p.logger.Info("index_not_found", slog.String("path", p.cfg.Output.IndexPath))
	return p.index(ctx, cmd.OutOrStdout(), indexOptions{noTUI: noTUI})
}
