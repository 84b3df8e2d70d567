package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lakshaymaurya-felt/macmole/internal/cleaner"
)

// ─── Messages ────────────────────────────────────────────────────────────────

type eventMsg cleaner.Event

type doneMsg struct{}

// ─── Model ───────────────────────────────────────────────────────────────────

// CleanModel is the bubbletea model for the cleanup progress display. It
// consumes the cleaner's event stream; the cleaner itself runs in its own
// goroutine and never waits on rendering.
type CleanModel struct {
	events <-chan cleaner.Event

	spin      spinner.Model
	bar       progress.Model
	total     int
	processed int
	freed     int64
	failed    int
	skipped   int
	current   string
	width     int
	quitting  bool
}

// NewCleanModel creates the progress model for a run over total items.
func NewCleanModel(events <-chan cleaner.Event, total int) CleanModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	bar := progress.New(progress.WithGradient("#00E5FF", "#BD93F9"))

	return CleanModel{
		events: events,
		spin:   sp,
		bar:    bar,
		total:  total,
		width:  80,
	}
}

func (m CleanModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// ─── tea.Model interface ─────────────────────────────────────────────────────

func (m CleanModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.listen())
}

func (m CleanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-10, 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		m.processed++
		m.current = msg.Item.Path
		switch msg.Action {
		case cleaner.ActionDelete, cleaner.ActionDryRun:
			m.freed += msg.Bytes
		case cleaner.ActionFail:
			m.failed++
		case cleaner.ActionSkip:
			m.skipped++
		}
		return m, m.listen()

	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m CleanModel) View() string {
	if m.quitting {
		return ""
	}

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.processed) / float64(m.total)
	}

	var s strings.Builder
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("  %s Cleaning %d/%d\n", m.spin.View(), m.processed, m.total))
	s.WriteString("  " + m.bar.ViewAs(pct) + "\n\n")
	s.WriteString("  " + SizeStyle.Render(FormatSize(m.freed)) + DimStyle.Render(" reclaimed"))
	if m.skipped > 0 {
		s.WriteString(DimStyle.Render(fmt.Sprintf("  %d skipped", m.skipped)))
	}
	if m.failed > 0 {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("  %d failed", m.failed)))
	}
	s.WriteString("\n")
	if m.current != "" {
		s.WriteString(MutedStyle.Render("  " + truncatePath(m.current, m.width-4)))
		s.WriteString("\n")
	}
	return s.String()
}

// truncatePath shortens long paths from the left, keeping the basename
// visible.
func truncatePath(p string, maxLen int) string {
	if maxLen < 10 || len(p) <= maxLen {
		return p
	}
	return "..." + p[len(p)-(maxLen-3):]
}
