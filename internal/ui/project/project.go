// Package project is the screen showing the open project: its graph nodes
// and the main module source.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/atelier/internal/keys"
	"github.com/zjrosen/atelier/internal/log"
	"github.com/zjrosen/atelier/internal/presenter"
	"github.com/zjrosen/atelier/internal/ui/markdown"
	"github.com/zjrosen/atelier/internal/ui/styles"
)

// headerHeight is the title line plus a blank line.
const headerHeight = 2

// Model is the project screen.
type Model struct {
	session  *presenter.Session
	viewport viewport.Model
	style    string
	renderer *markdown.Renderer
	width    int
	height   int
}

var _ presenter.ProjectView = (*Model)(nil)

// New creates an empty project screen rendering source in markdownStyle.
func New(markdownStyle string) *Model {
	return &Model{
		style:    markdownStyle,
		viewport: viewport.New(0, 0),
	}
}

// Show displays s. Called by the presenter when a session is installed.
func (m *Model) Show(s *presenter.Session) {
	m.session = s
	m.refresh()
	m.viewport.GotoTop()
}

// Session returns the displayed session, or nil.
func (m *Model) Session() *presenter.Session {
	return m.session
}

// SetSize updates the available area and re-renders.
func (m *Model) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-headerHeight, 1)
	m.renderer = nil
	m.refresh()
}

// Update scrolls the content.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Project.ScrollUp):
			m.viewport.ScrollUp(1)
		case key.Matches(msg, keys.Project.ScrollDown):
			m.viewport.ScrollDown(1)
		case key.Matches(msg, keys.Project.PageUp):
			m.viewport.HalfPageUp()
		case key.Matches(msg, keys.Project.PageDown):
			m.viewport.HalfPageDown()
		case key.Matches(msg, keys.Project.Top):
			m.viewport.GotoTop()
		case key.Matches(msg, keys.Project.Bottom):
			m.viewport.GotoBottom()
		}
		return nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// View renders the screen.
func (m *Model) View() string {
	title := "No project"
	if m.session != nil && m.session.Project != nil {
		title = m.session.Project.Name()
	}
	return styles.TitleStyle.Render(title) + "\n\n" + m.viewport.View()
}

func (m *Model) refresh() {
	if m.session == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.content())
}

func (m *Model) content() string {
	var b strings.Builder
	b.WriteString(m.nodes())
	b.WriteString("\n")
	b.WriteString(m.source())
	return b.String()
}

// nodes lists the graph of the main block.
func (m *Model) nodes() string {
	s := m.session
	if s.Graph == nil {
		return styles.HintStyle.Render("No graph") + "\n"
	}
	nodes, err := s.Graph.Nodes()
	if err != nil {
		return styles.HintStyle.Render(fmt.Sprintf("No graph: %v", err)) + "\n"
	}
	if len(nodes) == 0 {
		return styles.HintStyle.Render("The main block is empty") + "\n"
	}

	idWidth := 0
	for _, n := range nodes {
		idWidth = max(idWidth, len(n.ID))
	}
	var b strings.Builder
	for _, n := range nodes {
		line := "  " + styles.NodeIDStyle.Render(styles.PadRight(n.ID, idWidth)) + "  " + n.Expression
		if m.width > 0 {
			line = styles.TruncateString(line, m.width)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// source renders the module text, falling back to plain text when the
// renderer cannot be built.
func (m *Model) source() string {
	s := m.session
	text := s.Text
	title := ""
	if s.Module != nil {
		text = s.Module.Text()
		title = filepath.Base(s.Module.Path())
	}

	if m.renderer == nil {
		r, err := markdown.New(max(m.width, 20), m.style)
		if err != nil {
			log.ErrorErr(log.CatView, "Failed to create module renderer", err, "style", m.style)
			return text
		}
		m.renderer = r
	}
	out, err := m.renderer.RenderModule(title, text)
	if err != nil {
		log.ErrorErr(log.CatView, "Failed to render module", err)
		return text
	}
	return out
}
