package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/lexsearch/internal/index"
)

// TUIRenderer provides rich terminal UI using bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *indexingModel
	tracker *ProgressTracker
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer.
// Returns an error if the output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	tracker := NewProgressTracker()
	model := newIndexingModel(tracker, cfg.Title, cfg.OnCancel)
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:     cfg,
		tracker: tracker,
		model:   model,
		done:    make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Stage != r.tracker.Stats().Stage {
		r.tracker.SetStage(event.Stage, event.Total)
	}
	if event.Message != "" {
		r.tracker.SetMessage(event.Message)
	}
	if event.Total > 0 {
		r.tracker.Update(event.Current, event.Total, event.CurrentFile)
	}

	if r.program != nil {
		r.program.Send(progressUpdateMsg(event))
	}
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker.AddError(event)

	if r.program != nil {
		r.program.Send(errorMsg(event))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program == nil {
		return nil
	}

	// completeMsg normally quits the program; Quit covers early stops.
	program.Quit()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	return nil
}

type progressUpdateMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg CompletionStats
type tickMsg time.Time

// indexingModel is the bubbletea model for indexing progress.
type indexingModel struct {
	tracker     *ProgressTracker
	width       int
	height      int
	cancelling  bool
	complete    bool
	stats       CompletionStats
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
	title       string
	onCancel    func()
}

func newIndexingModel(tracker *ProgressTracker, title string, onCancel func()) *indexingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))

	p := progress.New(
		progress.WithSolidFill(ColorAccent),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return &indexingModel{
		tracker:     tracker,
		spinner:     s,
		progressBar: p,
		styles:      DefaultStyles(),
		width:       80,
		height:      24,
		title:       title,
		onCancel:    onCancel,
	}
}

// Init implements tea.Model.
func (m *indexingModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *indexingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.complete {
				return m, tea.Quit
			}
			// The run stops at its next stage boundary and then sends completeMsg.
			if !m.cancelling {
				m.cancelling = true
				if m.onCancel != nil {
					m.onCancel()
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = max(msg.Width-20, 20)

	case progressUpdateMsg, errorMsg:
		// State lives in the tracker.
		return m, nil

	case completeMsg:
		m.complete = true
		m.stats = CompletionStats(msg)
		return m, tea.Quit

	case tickMsg:
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *indexingModel) View() string {
	if m.complete {
		return m.renderComplete()
	}

	contentWidth := max(m.width-4, 40)
	stats := m.tracker.Stats()

	sections := []string{
		m.renderStages(stats.Stage),
		m.renderDivider(contentWidth),
		m.renderProgress(stats),
	}
	if stats.Message != "" {
		sections = append(sections, m.styles.Label.Render(stats.Message))
	}
	if stats.CurrentFile != "" {
		sections = append(sections, m.renderDivider(contentWidth))
		sections = append(sections, m.styles.Dim.Render(truncateFilePath(stats.CurrentFile, contentWidth-2)))
	}

	title := "lexsearch indexer"
	if m.title != "" {
		title = fmt.Sprintf("lexsearch indexer • %s", m.title)
	}
	panel := m.wrapInPanel(title, strings.Join(sections, "\n"), contentWidth)

	return panel + "\n" + m.renderStatusBar(stats)
}

// shortStageNames are the pipeline indicators in execution order.
var shortStageNames = map[index.Stage]string{
	index.StagePreparing:            "Prepare",
	index.StageCollectingPartitions: "Collect",
	index.StageProcessingBatches:    "Process",
	index.StageRefining:             "Refine",
	index.StageSavingIndex:          "Save",
	index.StageBuildingAutocomplete: "Vocab",
	index.StageSavingAutocomplete:   "Finish",
}

// renderStages renders the pipeline stage indicators.
func (m *indexingModel) renderStages(current index.Stage) string {
	var parts []string
	for _, s := range index.PipelineStages() {
		var icon string
		var style lipgloss.Style

		switch {
		case s < current:
			icon = "●"
			style = m.styles.Success
		case s == current:
			icon = m.spinner.View()
			style = m.styles.Active
		default:
			icon = "○"
			style = m.styles.Dim
		}
		parts = append(parts, style.Render(icon+" "+shortStageNames[s]))
	}

	return strings.Join(parts, m.styles.Dim.Render(" → "))
}

// renderProgress renders the progress bar, or a spinner when the stage has
// no file count.
func (m *indexingModel) renderProgress(stats ProgressStats) string {
	if stats.Total == 0 {
		return fmt.Sprintf("%s %s...", m.spinner.View(), stats.Stage.Label())
	}

	bar := m.progressBar.ViewAs(stats.Progress)
	pct := m.styles.Active.Render(fmt.Sprintf("%3.0f%%", stats.Progress*100))

	line := fmt.Sprintf("%d / %d files", stats.Current, stats.Total)
	if stats.AvgSpeed > 0 {
		line += fmt.Sprintf("  •  %.1f files/s", stats.AvgSpeed)
	}
	if stats.ETA > 0 {
		line += "  •  ETA " + formatDuration(stats.ETA)
	}

	return fmt.Sprintf("%s  %s\n%s", bar, pct, m.styles.Label.Render(line))
}

func (m *indexingModel) renderDivider(width int) string {
	return m.styles.Border.Render(strings.Repeat("─", width))
}

// wrapInPanel wraps content in a box border with title.
func (m *indexingModel) wrapInPanel(title, content string, width int) string {
	panel := m.styles.Panel.Width(width)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		panel.Render(content),
	)
}

// renderStatusBar renders the bottom status bar with warnings and the key hint.
func (m *indexingModel) renderStatusBar(stats ProgressStats) string {
	var parts []string
	if stats.WarnCount > 0 {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("⚠ %d warnings", stats.WarnCount)))
	}
	if stats.ErrorCount > 0 {
		parts = append(parts, m.styles.Error.Render(fmt.Sprintf("✗ %d errors", stats.ErrorCount)))
	}

	hint := "q to cancel"
	if m.cancelling {
		hint = "cancelling after the current stage..."
	}
	parts = append(parts, m.styles.Dim.Render(hint))

	return strings.Join(parts, m.styles.Dim.Render("  │  "))
}

// renderComplete renders the final summary.
func (m *indexingModel) renderComplete() string {
	contentWidth := max(m.width-4, 40)

	var lines []string
	border := ColorAccent
	switch m.stats.Outcome {
	case index.OutcomeCompleted:
		lines = append(lines, m.styles.Success.Render("✓ Indexing Complete"), "")
		lines = append(lines, m.renderField("Documents:", fmt.Sprintf("%d", m.stats.Documents)))
		lines = append(lines, m.renderField("Words:", fmt.Sprintf("%d", m.stats.Vocabulary)))
		lines = append(lines, m.renderField("Duration:", formatDuration(m.stats.Duration)))
	case index.OutcomeCancelled:
		border = ColorYellow
		lines = append(lines, m.styles.Warning.Render("Indexing cancelled"), "")
		lines = append(lines, m.styles.Label.Render("The previous index was kept."))
	default:
		border = ColorRed
		lines = append(lines, m.styles.Error.Render("✗ Indexing failed"), "")
		if m.stats.Err != nil {
			lines = append(lines, m.stats.Err.Error())
		}
	}

	if m.stats.Warnings > 0 {
		lines = append(lines, "", m.styles.Warning.Render(fmt.Sprintf("⚠ %d warnings", m.stats.Warnings)))
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(contentWidth)

	return panel.Render(strings.Join(lines, "\n")) + "\n"
}

func (m *indexingModel) renderField(label, value string) string {
	return fmt.Sprintf("%-11s %s", m.styles.Label.Render(label), m.styles.Active.Render(value))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// truncateFilePath shortens path to maxLen, keeping the file name.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen < 4 {
		return "..."
	}

	base := filepath.Base(path)
	if len(base)+4 > maxLen {
		return "..." + base[len(base)-maxLen+3:]
	}

	dir := filepath.Dir(path)
	keep := maxLen - len(base) - 4
	return "..." + dir[len(dir)-keep:] + string(filepath.Separator) + base
}

var _ Renderer = (*TUIRenderer)(nil)
