package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/lexsearch/internal/async"
	"github.com/Aman-CERP/lexsearch/internal/partition"
	"github.com/Aman-CERP/lexsearch/internal/store"
	"github.com/Aman-CERP/lexsearch/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index status",
		Long: `Show the persisted index: document and vocabulary counts, file sizes
and times, valid partition files, backups, and whether an indexing run
is in progress.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(".")
			if err != nil {
				return err
			}
			defer p.Close()

			return p.status(cmd.Context(), cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func (p *project) status(ctx context.Context, out io.Writer, jsonOutput bool) error {
	info := ui.StatusInfo{
		Backend:    p.cfg.Output.Backend,
		Index:      fileStatus(p.cfg.Output.IndexPath),
		Vocabulary: fileStatus(p.cfg.Output.AutocompletePath),
		Indexing:   indexingState(p.cfg.DataDir()),
	}

	if info.Index.Exists {
		if err := p.fillCounts(ctx, &info); err != nil {
			p.logger.Warn("status_load_failed", slog.String("error", err.Error()))
		}
	}

	parts, _ := partition.Collect(p.cfg.Indexing.PartitionFolder,
		p.cfg.Indexing.ProcessCount, p.cfg.Indexing.PartitionPattern)
	info.Partitions = len(parts)

	if sets, err := store.ListBackups(store.BackupDir(p.cfg.Output.IndexPath)); err == nil {
		info.Backups = len(sets)
	}

	r := ui.NewStatusRenderer(out, noColor || ui.DetectNoColor())
	if jsonOutput {
		return r.RenderJSON(info)
	}
	return r.Render(info)
}

// fillCounts loads the index and vocabulary to count documents and words.
func (p *project) fillCounts(ctx context.Context, info *ui.StatusInfo) error {
	st, err := p.store()
	if err != nil {
		return err
	}
	snap, err := store.LoadSnapshot(ctx, st, p.cfg.Output.AutocompletePath)
	if err != nil {
		return err
	}
	info.Documents = snap.Index.Len()
	info.Words = len(snap.Vocabulary)
	return nil
}

func fileStatus(path string) ui.FileStatus {
	f := ui.FileStatus{Path: path}
	if stat, err := os.Stat(path); err == nil {
		f.Exists = true
		f.Size = stat.Size()
		f.Modified = stat.ModTime()
	}
	return f
}

func indexingState(dataDir string) string {
	switch {
	case async.IsIndexing(dataDir):
		return "running"
	case async.HasIncompleteLock(dataDir):
		return "interrupted"
	default:
		return "idle"
	}
}
