package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/osr-runtime/config"
	"github.com/wippyai/osr-runtime/surface"
)

const resizeStep = 16

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	ctx       context.Context
	err       error
	session   *session
	spinner   spinner.Model
	reloads   int
	rendering bool
}

type renderedMsg struct {
	err error
}

type configMsg struct {
	cfg *config.Config
}

type configErrMsg struct {
	err error
}

func newInteractiveModel(ctx context.Context, s *session) *interactiveModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &interactiveModel{ctx: ctx, session: s, spinner: sp}
}

func (m *interactiveModel) Init() tea.Cmd {
	m.rendering = true
	return tea.Batch(m.spinner.Tick, m.render)
}

func (m *interactiveModel) render() tea.Msg {
	return renderedMsg{err: m.session.renderer.RenderFrame(m.ctx, m.session.handle)}
}

func (m *interactiveModel) resize(dw, dh int32) tea.Cmd {
	st := m.session.browser.Surface()
	r := st.ViewRect()
	st.SetViewRect(surface.Rect{X: r.X, Y: r.Y, Width: r.Width + dw, Height: r.Height + dh})
	return m.start()
}

func (m *interactiveModel) start() tea.Cmd {
	if m.rendering {
		return nil
	}
	m.rendering = true
	return m.render
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ", "enter":
			return m, m.start()
		case "right", "l":
			return m, m.resize(resizeStep, 0)
		case "left", "h":
			return m, m.resize(-resizeStep, 0)
		case "down", "j":
			return m, m.resize(0, resizeStep)
		case "up", "k":
			return m, m.resize(0, -resizeStep)
		}

	case renderedMsg:
		m.rendering = false
		m.err = msg.err

	case configMsg:
		// Only surface geometry follows the file; the rest is fixed at start.
		st := m.session.browser.Surface()
		r := st.ViewRect()
		st.SetViewRect(surface.Rect{X: r.X, Y: r.Y, Width: msg.cfg.Surface.Width, Height: msg.cfg.Surface.Height})
		st.SetScaleFactor(msg.cfg.Surface.Scale)
		m.reloads++
		m.err = nil
		return m, m.start()

	case configErrMsg:
		m.err = msg.err

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("OSR Host"))
	b.WriteString(" ")
	b.WriteString(m.session.browser.URL())
	if m.rendering {
		b.WriteString(" ")
		b.WriteString(m.spinner.View())
	}
	b.WriteString("\n\n")

	st := m.session.browser.Surface()
	last := m.session.stats.Last()
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	field("view", st.ViewRect().String())
	field("scale", fmt.Sprintf("%.2f", st.ScaleFactor()))
	field("handle", fmt.Sprintf("%d", m.session.browser.Handle()))
	field("frames", fmt.Sprintf("%d (%d popup)", m.session.stats.Frames(), m.session.stats.Popups()))
	field("last frame", fmt.Sprintf("%dx%d, %d dirty", last.Width, last.Height, len(last.Dirty)))
	if m.reloads > 0 {
		field("reloads", fmt.Sprintf("%d", m.reloads))
	}

	swatch := lipgloss.NewStyle().
		Background(lipgloss.Color(fmt.Sprintf("#%06X", last.Corner&0xffffff))).
		Render("      ")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", "corner")))
	b.WriteString(swatch)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space render • ←/→ width • ↑/↓ height • q quit"))
	return b.String()
}

func runInteractive(ctx context.Context, s *session, configPath string) error {
	p := tea.NewProgram(newInteractiveModel(ctx, s), tea.WithAltScreen())

	if configPath != "" {
		w, err := config.Watch(configPath,
			func(cfg *config.Config) { p.Send(configMsg{cfg: cfg}) },
			func(err error) { p.Send(configErrMsg{err: err}) },
		)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	_, err := p.Run()
	return err
}
