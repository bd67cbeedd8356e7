// Package tui renders a live view of the active session's plan.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/tui/components"
	"github.com/pablasso/plantrack/internal/tui/styles"
)

// Minimum terminal dimensions for the watch view.
const (
	MinTerminalWidth  = 40
	MinTerminalHeight = 10
)

const progressWidth = 20

// Snapshot is the plan state of a session at one point in time.
type Snapshot struct {
	Session string
	Tasks   []plan.Task
}

// Loader reads the current snapshot, typically by replaying the active branch.
type Loader func(ctx context.Context) (Snapshot, error)

// Options configures the watch view.
type Options struct {
	Load    Loader
	// Changes triggers a reload on every receive. Optional.
	Changes <-chan struct{}
}

type snapshotMsg struct {
	snap Snapshot
	err  error
}

type changedMsg struct{}

// Model is the Bubble Tea model of the watch view.
type Model struct {
	ctx    context.Context
	opts   Options
	width  int
	height int
	snap   Snapshot
	loaded bool
	err    error
	report viewport.Model
	status components.StatusBar
}

// Run starts the watch view and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(
		NewModel(ctx, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

// NewModel creates the watch model.
func NewModel(ctx context.Context, opts Options) Model {
	return Model{
		ctx:    ctx,
		opts:   opts,
		report: viewport.New(0, 0),
		status: components.NewStatusBar(
			components.KeyHint{Key: "r", Desc: "reload"},
			components.KeyHint{Key: "↑↓", Desc: "scroll"},
			components.KeyHint{Key: "q", Desc: "quit"},
		),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.listenForChanges())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		if m.opts.Load == nil {
			return snapshotMsg{}
		}
		snap, err := m.opts.Load(m.ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

// listenForChanges waits for the next change notification.
func (m Model) listenForChanges() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-m.opts.Changes:
			if !ok {
				return nil
			}
			return changedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.load()
		}
		var cmd tea.Cmd
		m.report, cmd = m.report.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.load(), m.listenForChanges())

	case snapshotMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
		}
		m.report.SetContent(plan.FormatStatus(m.snap.Tasks))
		return m, nil
	}
	return m, nil
}

// resize fits the report viewport between the header and the status bar.
func (m *Model) resize() {
	// title(2) + widget(1) + progress(1) + box borders(2) + status bar(1)
	h := m.height - 7
	if h < 1 {
		h = 1
	}
	w := m.width - 4
	if w < 10 {
		w = 10
	}
	m.report.Width = w
	m.report.Height = h
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.width < MinTerminalWidth || m.height < MinTerminalHeight {
		return m.renderTerminalTooSmall()
	}

	var b strings.Builder
	title := "Plan"
	if m.snap.Session != "" {
		title = "Plan: " + m.snap.Session
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case !m.loaded:
		b.WriteString(styles.MutedStyle.Render("Loading..."))
		b.WriteString("\n\n")
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	case len(m.snap.Tasks) == 0:
		b.WriteString(styles.DimStyle.Render(plan.NoPlanText))
		b.WriteString("\n\n")
	default:
		b.WriteString(components.RenderWidget(plan.FormatWidget(m.snap.Tasks)))
		b.WriteString("\n")
		b.WriteString(components.NewProgress(m.snap.Tasks, progressWidth).View())
		b.WriteString("\n")
	}

	b.WriteString(styles.BoxStyle.Render(m.report.View()))
	b.WriteString("\n")
	note := ""
	if plan.AllComplete(m.snap.Tasks) {
		note = "all tasks complete"
	}
	b.WriteString(m.status.Render(m.width, note))
	return b.String()
}

func (m Model) renderTerminalTooSmall() string {
	msg := fmt.Sprintf("Terminal too small\nMinimum: %dx%d\nCurrent: %dx%d",
		MinTerminalWidth, MinTerminalHeight, m.width, m.height)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		styles.ErrorStyle.Render(msg))
}
