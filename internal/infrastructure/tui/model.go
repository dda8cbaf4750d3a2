// Package tui shows the dashboard tree full screen. It only reads copies of
// the tree; the reconciliation engine stays its sole writer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/davarch/ci-dashboard/internal/domain"
	"github.com/davarch/ci-dashboard/internal/infrastructure/screen"
)

type TreeSource interface {
	Snapshot() []domain.NodeView
}

// Status is the header line data.
type Status struct {
	Projects    int
	InFlight    int64
	Failures    int64
	LastRefresh time.Time
	Interval    time.Duration
}

type Options struct {
	Title      string
	Status     func() Status
	RefreshNow func()
	PauseFile  string
	Hyperlinks bool
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type Model struct {
	tree TreeSource
	opt  Options

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

func New(tree TreeSource, opt Options) *Model {
	if opt.Title == "" {
		opt.Title = "ci-dashboard"
	}
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	return &Model{tree: tree, opt: opt, spinner: sp}
}

func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := max(msg.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.redraw()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.opt.RefreshNow != nil {
				m.opt.RefreshNow()
			}
			return m, nil
		case "p":
			m.togglePause()
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.redraw()
		cmds = append(cmds, cmd)
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), m.viewport.View(), m.footer())
}

func (m *Model) redraw() {
	if !m.ready {
		return
	}
	content := screen.Render(m.tree.Snapshot(), screen.RenderOptions{
		Width:      m.width,
		Spinner:    m.spinner.View(),
		Hyperlinks: m.opt.Hyperlinks,
	})
	if content == "" {
		content = mutedStyle.Render("waiting for the first projects...")
	}
	m.viewport.SetContent(content)
}

func (m *Model) header() string {
	parts := []string{titleStyle.Render(m.opt.Title)}
	if m.opt.Status != nil {
		st := m.opt.Status()
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d projects", st.Projects)))
		if !st.LastRefresh.IsZero() {
			ago := time.Since(st.LastRefresh).Truncate(time.Second)
			parts = append(parts, mutedStyle.Render("refreshed "+ago.String()+" ago"))
		}
		if st.Interval > 0 {
			parts = append(parts, mutedStyle.Render("every "+st.Interval.String()))
		}
		if st.InFlight > 0 {
			parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d in flight", st.InFlight)))
		}
		if st.Failures > 0 {
			parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d failed fetches", st.Failures)))
		}
	}
	if m.paused() {
		parts = append(parts, pausedStyle.Render("paused"))
	}
	return strings.Join(parts, mutedStyle.Render(" · "))
}

func (m *Model) footer() string {
	return helpStyle.Render("r refresh · p pause · ↑/↓ scroll · q quit")
}

func (m *Model) paused() bool {
	if m.opt.PauseFile == "" {
		return false
	}
	_, err := os.Stat(m.opt.PauseFile)
	return err == nil
}

func (m *Model) togglePause() {
	if m.opt.PauseFile == "" {
		return
	}
	if m.paused() {
		_ = os.Remove(m.opt.PauseFile)
		return
	}
	_ = os.MkdirAll(filepath.Dir(m.opt.PauseFile), 0o755)
	_ = os.WriteFile(m.opt.PauseFile, nil, 0o644)
}

// Run takes over the terminal until the user quits or ctx is done.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
