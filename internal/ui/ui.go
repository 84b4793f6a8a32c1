package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcolella14/mixtape/internal/tasks"
)

// maxRecentLines bounds the rolling log shown under the progress bar.
const maxRecentLines = 8

// progressMsg wraps one orchestrator update for the bubbletea loop.
type progressMsg tasks.ProgressUpdate

// finishedMsg signals that the progress channel closed.
type finishedMsg struct{}

// Model renders a download run driven by the orchestrator's progress channel.
type Model struct {
	updates <-chan tasks.ProgressUpdate

	spinner  spinner.Model
	bar      progress.Model
	playlist string
	step     int
	total    int
	recent   []string
	reports  []*tasks.BatchReport
	done     bool
	quitting bool
}

// NewModel creates a progress view that consumes updates until the channel
// closes. The caller owns the channel and closes it when the run completes.
func NewModel(updates <-chan tasks.ProgressUpdate) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	return Model{
		updates: updates,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

// Reports returns the batch reports observed during the run.
func (m Model) Reports() []*tasks.BatchReport {
	return m.reports
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return finishedMsg{}
		}
		return progressMsg(update)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 8
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case progressMsg:
		return m.applyUpdate(tasks.ProgressUpdate(msg))

	case finishedMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) applyUpdate(update tasks.ProgressUpdate) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForUpdate()}

	switch update.Phase {
	case tasks.PlaylistStart:
		m.playlist = update.Message
		m.step = 0
		m.total = update.Total
		m.recent = nil
	case tasks.PlaylistDone:
		if report, ok := update.Data.(*tasks.BatchReport); ok {
			m.reports = append(m.reports, report)
		}
		m.recent = append(m.recent, update.Message)
	case tasks.TrackResolving:
		// Transient; keep the bar where it is.
	default:
		m.step = update.Step
		m.total = update.Total
		m.recent = append(m.recent, update.Message)
	}

	if len(m.recent) > maxRecentLines {
		m.recent = m.recent[len(m.recent)-maxRecentLines:]
	}

	if m.total > 0 {
		cmds = append(cmds, m.bar.SetPercent(float64(m.step)/float64(m.total)))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	header := m.playlist
	if header == "" {
		header = "Starting download run..."
	}
	if m.done {
		b.WriteString(styles.title.Render("Download complete"))
	} else {
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), styles.title.Render(header)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n\n")

	for _, line := range m.recent {
		b.WriteString(renderLine(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.help.Render("q to quit"))
	b.WriteString("\n")

	return b.String()
}

// renderLine colors outcome lines by their leading marker.
func renderLine(line string) string {
	switch {
	case strings.Contains(line, "✓"):
		return styles.ok.Render(line)
	case strings.Contains(line, "✗"):
		return styles.err.Render(line)
	default:
		return line
	}
}
