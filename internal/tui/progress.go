// Package tui renders live pipeline progress in the terminal. It consumes
// ticks from a progress.Tracker and is entirely cosmetic: the run behaves
// identically with the display disabled.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dedupkit/deduper/internal/progress"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	stageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// stageOrder fixes the display order of pipeline stages
var stageOrder = []progress.Stage{
	progress.StageScan,
	progress.StagePartial,
	progress.StageFull,
	progress.StageVerify,
	progress.StageRemove,
}

func stageLabel(stage progress.Stage) string {
	switch stage {
	case progress.StageScan:
		return "Scanning"
	case progress.StagePartial:
		return "Partial signatures"
	case progress.StageFull:
		return "Full signatures"
	case progress.StageVerify:
		return "Verifying"
	case progress.StageRemove:
		return "Removing"
	default:
		return string(stage)
	}
}

type updateMsg progress.Update

type doneMsg struct{}

// Model is the bubbletea model for the progress display
type Model struct {
	spinner   spinner.Model
	updates   <-chan progress.Update
	counts    map[progress.Stage]int
	current   progress.Update
	done      bool
	startTime time.Time
}

// NewModel creates a progress model fed by updates
func NewModel(updates <-chan progress.Update) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = stageStyle

	return Model{
		spinner:   s,
		updates:   updates,
		counts:    make(map[progress.Stage]int),
		startTime: time.Now(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates))
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case updateMsg:
		m.counts[msg.Stage] = msg.Count
		m.current = progress.Update(msg)
		return m, waitForUpdate(m.updates)

	case doneMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Deduper"))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", time.Since(m.startTime).Round(time.Second))))
	b.WriteString("\n")

	for _, stage := range stageOrder {
		count, ok := m.counts[stage]
		if !ok {
			continue
		}
		marker := "  "
		if !m.done && stage == m.current.Stage {
			marker = m.spinner.View()
		}
		b.WriteString(fmt.Sprintf("%s %s: %d files\n", marker, stageLabel(stage), count))
	}

	if !m.done && m.current.Path != "" {
		b.WriteString(dimStyle.Render(truncatePath(m.current.Path, 70)))
		b.WriteString("\n")
	}

	return b.String()
}

// waitForUpdate blocks for the next tick; a closed channel ends the display
func waitForUpdate(updates <-chan progress.Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func truncatePath(path string, max int) string {
	if len(path) <= max {
		return path
	}
	return "..." + path[len(path)-max+3:]
}

// Run starts the display for tracker and returns a wait function that
// blocks until the display has drained (the tracker must be closed first).
func Run(tracker *progress.Tracker) (wait func()) {
	program := tea.NewProgram(NewModel(tracker.Subscribe()))

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_, _ = program.Run()
	}()

	return func() { <-finished }
}
