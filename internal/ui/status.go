package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// FileStatus describes one persisted file.
type FileStatus struct {
	Path     string    `json:"path"`
	Exists   bool      `json:"exists"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified,omitempty"`
}

// StatusInfo describes the persisted index for `lexsearch status`.
type StatusInfo struct {
	Backend    string     `json:"backend"`
	Index      FileStatus `json:"index"`
	Vocabulary FileStatus `json:"vocabulary"`
	Documents  int        `json:"documents"`
	Words      int        `json:"words"`
	Partitions int        `json:"partitions"`
	Backups    int        `json:"backups"`

	// Indexing is "running", "interrupted" (stale lock) or "idle".
	Indexing string `json:"indexing"`
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status"))

	_, _ = fmt.Fprintf(r.out, "  Documents:  %d\n", info.Documents)
	_, _ = fmt.Fprintf(r.out, "  Words:      %d\n", info.Words)
	_, _ = fmt.Fprintf(r.out, "  Partitions: %d\n", info.Partitions)
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintf(r.out, "  Storage (%s):\n", info.Backend)
	r.renderFile("Index:     ", info.Index)
	r.renderFile("Vocabulary:", info.Vocabulary)
	if info.Backups > 0 {
		_, _ = fmt.Fprintf(r.out, "    Backups:    %d\n", info.Backups)
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintf(r.out, "  Indexing: %s\n", r.renderState(info.Indexing))
	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func (r *StatusRenderer) renderFile(label string, f FileStatus) {
	if !f.Exists {
		_, _ = fmt.Fprintf(r.out, "    %s %s %s\n", label, f.Path, r.styles.Warning.Render("(missing)"))
		return
	}
	_, _ = fmt.Fprintf(r.out, "    %s %s, %s, updated %s\n", label, f.Path, FormatBytes(f.Size), formatTime(f.Modified))
}

func (r *StatusRenderer) renderState(state string) string {
	switch state {
	case "idle":
		return r.styles.Success.Render(state)
	case "running":
		return r.styles.Active.Render(state)
	case "interrupted":
		return r.styles.Warning.Render(state + " (last run did not finish)")
	default:
		return state
	}
}

// formatTime formats a time relative to now.
func formatTime(t time.Time) string {
	diff := time.Since(t)

	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 2; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMG"[exp])
}
